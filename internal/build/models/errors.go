package models

import "errors"

// Sentinels wrapped by stage errors so callers can tell which step failed.
var (
	ErrStylesheetCompile = errors.New("pwabuilder: stylesheet compilation failed")
	ErrBundle            = errors.New("pwabuilder: module bundling failed")
	ErrLegacyCompile     = errors.New("pwabuilder: legacy module compilation degraded")
	ErrAssetCopy         = errors.New("pwabuilder: asset copy incomplete")
	ErrPromoteEntry      = errors.New("pwabuilder: entry promotion failed")
	ErrRewrite           = errors.New("pwabuilder: reference rewrite incomplete")
	ErrPrune             = errors.New("pwabuilder: duplicate pruning incomplete")
)
