package notification

import "context"

// 模板标识, 对应模板目录下的 <id>.html
const (
	TemplateGeneral                 = "general"
	TemplateOrderTradeUpdate        = "order-trade-update"
	TemplateAccountUpdateFundingFee = "account-update-funding-fee"
	TemplateAccountUpdateOrder      = "account-update-order"
)

// Content 渲染模板使用的字段, 每次通知生成一份, 渲染后丢弃
type Content map[string]any

type Renderer interface {
	Render(ctx context.Context, templateId string, content Content) (string, error)
}

// Notifier 将渲染后的文本发送到聊天频道
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
