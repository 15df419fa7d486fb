package exchange

// Service 交易所只读能力的集合
type Service interface {
	PositionService() PositionService
	UserStreamService() UserStreamService
}
