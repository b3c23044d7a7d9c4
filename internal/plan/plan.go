// Package plan maps subscription tiers to feature gates and numeric quotas.
// Everything here is a pure function over its inputs; the same rules are
// enforced by the database policies, so this table is the single place the
// application spells them out.
package plan

// Tier is a subscription level. Anything that is not a known tier resolves
// to TierFree.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Action is the closed set of plan-gated operations.
type Action string

const (
	ActionCreateFlipbook   Action = "create_flipbook"
	ActionUpdateFlipbook   Action = "update_flipbook"
	ActionDeleteFlipbook   Action = "delete_flipbook"
	ActionAccessAnalytics  Action = "access_analytics"
	ActionExportFlipbook   Action = "export_flipbook"
	ActionCustomBranding   Action = "custom_branding"
	ActionShareFlipbook    Action = "share_flipbook"
	ActionPublishFlipbook  Action = "publish_flipbook"
	ActionAdvancedFeatures Action = "advanced_features"
)

// Unlimited marks a quota with no numeric cap.
const Unlimited = -1

// Config describes one tier's limits and display metadata. The table is
// compiled in; the seeded database rows exist for ops visibility only.
type Config struct {
	Tier         Tier
	DisplayName  string
	MaxFlipbooks int
	// Price in the currency's smallest unit; zero for the free tier.
	Price int64
}

var configs = map[Tier]Config{
	TierFree: {
		Tier:         TierFree,
		DisplayName:  "Free",
		MaxFlipbooks: 3,
		Price:        0,
	},
	TierPremium: {
		Tier:         TierPremium,
		DisplayName:  "Premium",
		MaxFlipbooks: Unlimited,
		Price:        99900,
	},
}

// premiumOnly lists actions gated entirely on the premium tier.
var premiumOnly = map[Action]bool{
	ActionAccessAnalytics:  true,
	ActionExportFlipbook:   true,
	ActionCustomBranding:   true,
	ActionAdvancedFeatures: true,
}

var knownActions = map[Action]bool{
	ActionCreateFlipbook:   true,
	ActionUpdateFlipbook:   true,
	ActionDeleteFlipbook:   true,
	ActionAccessAnalytics:  true,
	ActionExportFlipbook:   true,
	ActionCustomBranding:   true,
	ActionShareFlipbook:    true,
	ActionPublishFlipbook:  true,
	ActionAdvancedFeatures: true,
}

// Context carries the inputs a plan decision depends on.
type Context struct {
	// Plan is the raw tier value from the profile row. May be empty or
	// garbage; ResolveTier handles that.
	Plan string
	// FlipbookCount is the user's current number of flipbooks, consulted
	// for creation quota checks.
	FlipbookCount int
}

type Result struct {
	Allowed         bool   `json:"allowed"`
	Reason          string `json:"reason,omitempty"`
	UpgradeRequired bool   `json:"upgrade_required"`
	Usage           int    `json:"usage,omitempty"`
	Limit           int    `json:"limit,omitempty"`
}

// ResolveTier maps a raw plan value to a tier. Unknown, missing, or invalid
// values fall back to the most restrictive tier.
func ResolveTier(raw string) Tier {
	if _, ok := configs[Tier(raw)]; ok {
		return Tier(raw)
	}
	return TierFree
}

// Limits returns the config for a tier, resolving unknown values to free.
func Limits(t Tier) Config {
	if cfg, ok := configs[t]; ok {
		return cfg
	}
	return configs[TierFree]
}

// AllConfigs returns the tier table for display purposes.
func AllConfigs() []Config {
	return []Config{configs[TierFree], configs[TierPremium]}
}

// ValidateAction decides whether the action is allowed under the context's
// plan. Deterministic, no I/O.
func ValidateAction(action Action, ctx Context) Result {
	if !knownActions[action] {
		return Result{Allowed: false, Reason: "unknown action"}
	}

	tier := ResolveTier(ctx.Plan)
	cfg := Limits(tier)

	if premiumOnly[action] && tier != TierPremium {
		return Result{
			Allowed:         false,
			Reason:          "this feature requires a premium plan",
			UpgradeRequired: true,
		}
	}

	if action == ActionCreateFlipbook && cfg.MaxFlipbooks != Unlimited {
		if ctx.FlipbookCount >= cfg.MaxFlipbooks {
			return Result{
				Allowed:         false,
				Reason:          "flipbook limit reached",
				UpgradeRequired: true,
				Usage:           ctx.FlipbookCount,
				Limit:           cfg.MaxFlipbooks,
			}
		}
		return Result{
			Allowed: true,
			Usage:   ctx.FlipbookCount,
			Limit:   cfg.MaxFlipbooks,
		}
	}

	return Result{Allowed: true}
}
