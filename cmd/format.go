package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetpool/core/model"
)

// money renders an amount as dollars with thousands separators and cents.
func money(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, cents, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + cents
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeVessels(w io.Writer, vessels []model.VesselSummary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SHIP\tTYPE\tINTENSITY\tBALANCE\tSTATUS\tEXCESS t\tIMPACT")
	for _, v := range vessels {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\t%.3f\t%s\n",
			v.VesselID, v.VesselType, v.Intensity, v.Balance, v.Status, v.ExcessCO2Tons, money(v.FinancialImpact))
	}
	return tw.Flush()
}

func writePerformers(w io.Writer, ps []model.Performer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "  SHIP\tTYPE\tINTENSITY\tSTATUS")
	for _, p := range ps {
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%s\n", p.VesselID, p.VesselType, p.Intensity, p.Status)
	}
	return tw.Flush()
}

func writePool(w io.Writer, i int, p model.PoolOutcome) {
	ok := "No"
	if p.Successful {
		ok = "Yes"
	}
	fmt.Fprintf(w, "  %d. %s (%s) + %s (%s)\n", i, p.Vessel1ID, p.Vessel1Status, p.Vessel2ID, p.Vessel2Status)
	fmt.Fprintf(w, "     Combined balance: %.2f  Weighted intensity: %.2f\n", p.CombinedBalance, p.WeightedIntensity)
	fmt.Fprintf(w, "     Pooling successful: %s  Savings: %s\n", ok, money(p.Savings))
}
