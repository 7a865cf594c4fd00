package proposal

import (
	"context"
	"time"

	"github.com/smallbiznis/dealdesk/internal/clock"
	"github.com/smallbiznis/dealdesk/internal/config"
	"github.com/smallbiznis/dealdesk/internal/providers/pdf"
	"github.com/smallbiznis/dealdesk/internal/proposal/repository"
	"github.com/smallbiznis/dealdesk/internal/proposal/service"
	"github.com/smallbiznis/dealdesk/internal/proposal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

var Module = fx.Module("proposal.service",
	fx.Provide(repository.Provide),
	fx.Provide(pdf.New),
	fx.Provide(NewSessionStore),
	fx.Provide(service.New),
	fx.Provide(service.NewDrafts),
)

// NewSessionStore builds the draft store and sweeps idle sessions while the
// app runs.
func NewSessionStore(lc fx.Lifecycle, clk clock.Clock, cfg config.Config, log *zap.Logger) *session.Store {
	store := session.NewStore(clk, cfg.Proposal.DraftIdleTTL)
	log = log.Named("proposal.sessions")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if removed := store.Sweep(); removed > 0 {
							log.Debug("expired draft sessions removed", zap.Int("removed", removed))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
	return store
}
