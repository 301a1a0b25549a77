package wallet

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

// Report contains precomputed data for wallet rendering.
type Report struct {
	Claims   []model.ClaimRecord
	Progress []model.ReadingRecord
	Summary  Summary
}

// BuildReport loads and prepares data for wallet rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.WalletConfig) (Report, error) {
	claims, err := st.ListClaims(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(claims) > cfg.Last {
		claims = claims[len(claims)-cfg.Last:]
	}
	progress, err := st.ListProgress(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Claims:   claims,
		Progress: progress,
		Summary:  Summarize(claims, progress),
	}, nil
}
