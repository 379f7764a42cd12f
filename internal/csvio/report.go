package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tinoosan/txengine/internal/ledger"
)

// ReportHeader is the first row of every report.
var ReportHeader = []string{"client", "available", "held", "total", "locked"}

// WriteReport writes one row per balance, in the order given.
func WriteReport(w io.Writer, rows []ledger.Balance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return err
	}
	rec := make([]string, len(ReportHeader))
	for _, b := range rows {
		rec[0] = strconv.FormatUint(uint64(b.Client), 10)
		rec[1] = ledger.FormatAmount(b.Available)
		rec[2] = ledger.FormatAmount(b.Held)
		rec[3] = ledger.FormatAmount(b.Total)
		rec[4] = strconv.FormatBool(b.Locked)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
