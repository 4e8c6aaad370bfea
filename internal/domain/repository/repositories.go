package repository

// Repositories agrupa los repositorios atados a una misma transacción.
// Lo construye el TxRunner de infraestructura para cada Run.
type Repositories struct {
	Products   ProductRepository
	Categories CategoryRepository
	Movements  StockMovementRepository
	Sales      SaleRepository
	Returns    ReturnRepository
	Settings   SettingRepository
}
