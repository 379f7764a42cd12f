package httpapi

import (
	"sort"

	"github.com/tinoosan/txengine/internal/ledger"
)

// balanceResponse mirrors one report row. Amounts are decimal strings.
type balanceResponse struct {
	Client    ledger.ClientID `json:"client"`
	Available string          `json:"available"`
	Held      string          `json:"held"`
	Total     string          `json:"total"`
	Locked    bool            `json:"locked"`
}

type listClientsResponse struct {
	Items []balanceResponse `json:"items"`
}

// clientResponse adds the disputable history to a balance.
type clientResponse struct {
	balanceResponse
	Transactions []recordResponse `json:"transactions"`
}

type recordResponse struct {
	Tx       ledger.TxID `json:"tx"`
	Amount   string      `json:"amount"`
	Disputed bool        `json:"disputed"`
}

func toBalanceResponse(b ledger.Balance) balanceResponse {
	return balanceResponse{
		Client:    b.Client,
		Available: ledger.FormatAmount(b.Available),
		Held:      ledger.FormatAmount(b.Held),
		Total:     ledger.FormatAmount(b.Total),
		Locked:    b.Locked,
	}
}

func toClientResponse(a ledger.Account) clientResponse {
	out := clientResponse{
		balanceResponse: toBalanceResponse(a.Balance()),
		Transactions:    make([]recordResponse, 0, len(a.History)),
	}
	for tx, r := range a.History {
		out.Transactions = append(out.Transactions, recordResponse{Tx: tx, Amount: ledger.FormatAmount(r.Amount), Disputed: r.Disputed})
	}
	sort.Slice(out.Transactions, func(i, j int) bool { return out.Transactions[i].Tx < out.Transactions[j].Tx })
	return out
}
