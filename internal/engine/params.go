package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

// metaParams is the meta entry holding the parameters a ledger was
// initialized with. Written once by the initialize transition.
const metaParams = "params"

func encodeParams(p ledger.Params) (string, error) {
	v, err := ir.FromValue(p)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return string(data), nil
}

// StoredParams returns the parameters recorded when the ledger in s was
// initialized. ok is false for a ledger that was never initialized.
func StoredParams(ctx context.Context, s *store.Store) (p ledger.Params, ok bool, err error) {
	raw, ok, err := s.GetMeta(ctx, metaParams)
	if err != nil || !ok {
		return ledger.Params{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ledger.Params{}, false, fmt.Errorf("decode stored params: %w", err)
	}
	return p, true, nil
}
