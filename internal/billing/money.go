package billing

import "github.com/shopspring/decimal"

// CentPrecision задаёт число знаков после запятой, с которым хранятся суммы.
const CentPrecision = 2

// IsCentPrecise сообщает, выражается ли сумма целым числом копеек.
func IsCentPrecise(d decimal.Decimal) bool {
	return d.Equal(d.Round(CentPrecision))
}
