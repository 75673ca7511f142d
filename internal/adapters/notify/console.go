package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// TradeExecuted imprime un trade simulado en una línea.
func (c *Console) TradeExecuted(trade domain.Trade) {
	fmt.Fprintf(c.out, "[%s] %-4s @ %.2f (bar %s)\n",
		time.Now().UTC().Format("15:04:05"),
		actionLabel(trade.Action),
		trade.Price,
		trade.Timestamp.Format(time.RFC3339),
	)
}

// RunFinished imprime el trade log como tabla y el resumen del run.
func (c *Console) RunFinished(result *domain.Result) {
	fmt.Fprintf(c.out, "\n=== %s run on %s — %s to %s ===\n",
		result.Strategy, result.Pair,
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))

	if len(result.Trades) == 0 {
		fmt.Fprintln(c.out, "  (no trades)")
	} else {
		c.printTrades(result.Trades)
	}

	fmt.Fprintf(c.out, "  Initial cash: $%.2f\n", result.InitialCash)
	fmt.Fprintf(c.out, "  Final cash:   $%.2f\n", result.FinalCash)
	fmt.Fprintf(c.out, "  Return:       %.2f%%\n\n", result.Return*100)
}

// printTrades imprime el trade log completo.
func (c *Console) printTrades(trades []domain.Trade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Action", "Timestamp", "Price")

	for i, trade := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			actionLabel(trade.Action),
			trade.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", trade.Price),
		)
	}

	table.Render()
}

func actionLabel(a domain.Signal) string {
	switch a {
	case domain.SignalBuy:
		return "BUY"
	case domain.SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}
