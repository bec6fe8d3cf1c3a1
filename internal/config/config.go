// Package config loads daf's layered configuration: enterprise,
// organization, team, user, and session-local layers merged by precedence,
// plus the dynamic tracker field-alias catalog built on top of C2's
// FieldCatalog. Layering follows the viper-merge idiom used for Kandev's
// backend config, generalized from one file + env to five optional JSON
// files merged in precedence order.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/devaiflow/daf/internal/paths"
)

// Layer identifies one of the five configuration scopes, from narrowest to
// the widest-reaching.
type Layer string

const (
	LayerSessionLocal Layer = "session-local"
	LayerUser         Layer = "user"
	LayerTeam         Layer = "team"
	LayerOrganization Layer = "organization"
	LayerEnterprise   Layer = "enterprise"
)

// PromptPolicy is the tri-state a single interactive prompt can be set to.
type PromptPolicy string

const (
	PromptAlways PromptPolicy = "always"
	PromptNever  PromptPolicy = "never"
	PromptAsk    PromptPolicy = "ask"
)

// SummaryMode selects how a conversation's summary is produced when a
// Conversation is archived.
type SummaryMode string

const (
	SummaryAI    SummaryMode = "ai"
	SummaryLocal SummaryMode = "local"
	SummaryBoth  SummaryMode = "both"
	SummaryNone  SummaryMode = "none"
)

// TransitionPolicy controls whether a tracker issue transition is prompted
// for or applied automatically, and how a failure is handled. Used for both
// the open-time reopen prompt and the complete-time transition.
type TransitionPolicy struct {
	Prompt bool   `mapstructure:"prompt"`
	Target string `mapstructure:"target"`
	OnFail string `mapstructure:"onFail"` // "warn" or "block"
}

// TrackerConfig holds every tracker-facing setting a layer may define.
type TrackerConfig struct {
	Endpoint          string            `mapstructure:"endpoint"`
	AuthType          string            `mapstructure:"authType"` // auto | bearer | basic
	ProjectCode       string            `mapstructure:"projectCode"`
	CustomFields      map[string]string `mapstructure:"customFields"` // alias -> field id
	CommentVisibility string            `mapstructure:"commentVisibility"`
	// ClosedStates is the configurable set of tracker states that trigger
	// the reopen prompt at `open`; left fully config-driven rather than
	// hard-coded.
	ClosedStates []string         `mapstructure:"closedStates"`
	OnOpen       TransitionPolicy `mapstructure:"onOpen"`
	OnComplete   TransitionPolicy `mapstructure:"onComplete"`
}

// Config is the fully-merged view of every layer.
type Config struct {
	Tracker          TrackerConfig          `mapstructure:"tracker"`
	Workstream       string                 `mapstructure:"workstream"`
	WorkspaceRoots   []string               `mapstructure:"workspaceRoots"`
	RepoKeywordHints []string               `mapstructure:"repoKeywordHints"`
	Prompts          map[string]PromptPolicy  `mapstructure:"prompts"`
	AgentChoice      string                 `mapstructure:"agentChoice"`
	SummaryMode      SummaryMode            `mapstructure:"summaryMode"`
}

func defaultClosedStates() []string {
	return []string{"done", "closed", "resolved", "review", "release_pending"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tracker.authType", "auto")
	v.SetDefault("tracker.closedStates", defaultClosedStates())
	v.SetDefault("tracker.onOpen.prompt", true)
	v.SetDefault("tracker.onOpen.onFail", "warn")
	v.SetDefault("tracker.onComplete.prompt", true)
	v.SetDefault("tracker.onComplete.onFail", "warn")
	v.SetDefault("agentChoice", "claude-code")
	v.SetDefault("summaryMode", string(SummaryLocal))
}

// layerPath returns the on-disk path for a layer's config file under root,
// or sessionLocalPath for the session-local layer (which lives alongside
// the session, not under root).
func layerPath(root, sessionLocalPath string, layer Layer) string {
	switch layer {
	case LayerSessionLocal:
		return sessionLocalPath
	case LayerUser:
		return filepath.Join(root, paths.UserConfigFile)
	case LayerTeam:
		return filepath.Join(root, paths.TeamConfigFile)
	case LayerOrganization:
		return filepath.Join(root, paths.OrganizationConfigFile)
	case LayerEnterprise:
		return filepath.Join(root, paths.EnterpriseConfigFile)
	default:
		return ""
	}
}

// mergeOrder lists layers from lowest to highest precedence:
// session-local < user < team < organization < enterprise (highest wins) —
// enterprise policy wins over every narrower scope, including the session
// the user is actively working in. Layers are merged in this order so a
// later MergeConfig call overwrites any key an earlier one set.
var mergeOrder = []Layer{
	LayerSessionLocal,
	LayerUser,
	LayerTeam,
	LayerOrganization,
	LayerEnterprise,
}

// Load reads and merges every present layer under root (plus the
// session-local file at sessionLocalPath, if non-empty), applying defaults
// first. A missing layer file is not an error; layers are optional except
// for the defaults baseline.
func Load(root, sessionLocalPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	for _, layer := range mergeOrder {
		path := layerPath(root, sessionLocalPath, layer)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("config: reading %s layer: %w", layer, err)
		}
		if len(data) == 0 {
			continue
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("config: parsing %s layer (%s): %w", layer, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling merged config: %w", err)
	}
	return &cfg, nil
}
