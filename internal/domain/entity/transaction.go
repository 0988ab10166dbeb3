package entity

import "github.com/shopspring/decimal"

// Transaction is a wallet transaction as reported by the backend.
type Transaction struct {
	ID          int64           `json:"trxNum"`
	TxID        string          `json:"trxTxId"`
	ToAddress   string          `json:"trxToAddr"`
	Type        string          `json:"trxType,omitempty"`
	Amount      decimal.Decimal `json:"trxAmount"`
	Fee         decimal.Decimal `json:"trxFee"`
	Status      string          `json:"trxStatus"`
	ConfirmedOn string          `json:"trxConfirmedDat,omitempty"` // YYYYMMDD
	ConfirmedAt string          `json:"trxConfirmedTim,omitempty"` // HHMMSS
	WalletID    int64           `json:"walNum"`
	AddressID   int64           `json:"wadNum,omitempty"`
	CreatedOn   string          `json:"credat,omitempty"`
	CreatedAt   string          `json:"cretim,omitempty"`
	Active      string          `json:"active,omitempty"`
}
