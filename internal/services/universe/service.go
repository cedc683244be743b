// Package universe enumerates the instrument universe from the provider's
// exchange symbol lists.
package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

// Service builds the flat instrument list for one scan. The list is not
// cached beyond a scan's lifetime; each Run re-enumerates.
type Service struct {
	client    interfaces.MarketDataClient
	logger    *common.Logger
	exchanges []string
}

// NewService creates a universe service over the given provider exchange
// codes (one per market segment).
func NewService(client interfaces.MarketDataClient, exchanges []string, logger *common.Logger) *Service {
	return &Service{
		client:    client,
		logger:    logger,
		exchanges: exchanges,
	}
}

// Instruments lists common stocks across all configured segments. A segment
// that fails to enumerate is skipped with a warning — a partial universe
// still scans.
func (s *Service) Instruments(ctx context.Context) ([]models.Instrument, error) {
	var instruments []models.Instrument

	for _, exchange := range s.exchanges {
		symbols, err := s.client.GetExchangeSymbols(ctx, exchange)
		if err != nil {
			s.logger.Warn().Str("exchange", exchange).Err(err).Msg("Failed to list exchange symbols")
			continue
		}

		segment := segmentFor(exchange)
		for _, sym := range symbols {
			if !isCommonStock(sym.Type) {
				continue
			}
			instruments = append(instruments, models.Instrument{
				Symbol:  fmt.Sprintf("%s.%s", sym.Code, segment),
				Name:    sym.Name,
				Segment: segment,
			})
		}

		s.logger.Debug().Str("exchange", exchange).Int("symbols", len(symbols)).Msg("Exchange symbols loaded")
	}

	if len(instruments) == 0 {
		return nil, fmt.Errorf("no instruments enumerated from exchanges %v", s.exchanges)
	}

	return instruments, nil
}

// NameMap returns the instrument -> display-name map shared read-only by
// scan workers.
func NameMap(instruments []models.Instrument) map[string]string {
	names := make(map[string]string, len(instruments))
	for _, inst := range instruments {
		names[inst.Symbol] = inst.Name
	}
	return names
}

func segmentFor(exchange string) models.MarketSegment {
	if strings.EqualFold(exchange, "TWO") {
		return models.SegmentOTC
	}
	return models.SegmentListed
}

func isCommonStock(symbolType string) bool {
	return strings.EqualFold(symbolType, "Common Stock")
}

// Ensure Service implements UniverseProvider
var _ interfaces.UniverseProvider = (*Service)(nil)
