package ports

import (
	"github.com/alejandrodnm/krakenbot/internal/domain"
)

// Notifier presenta trades y resultados al usuario.
type Notifier interface {
	// TradeExecuted anuncia un trade simulado recién emitido.
	TradeExecuted(trade domain.Trade)

	// RunFinished presenta el resumen final de un run: cash inicial/final,
	// retorno y el trade log completo.
	RunFinished(result *domain.Result)
}
