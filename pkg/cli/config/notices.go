package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// NoticeFile is the TOML document declaring notices and roles
type NoticeFile struct {
	Notices []NoticeEntry `toml:"notice"`
	Roles   []RoleEntry   `toml:"role"`
}

// NoticeEntry declares one notice shown on the admin page
type NoticeEntry struct {
	ID          string `toml:"id"`
	Message     string `toml:"message"`
	Severity    string `toml:"severity"`
	Dismissible bool   `toml:"dismissible"`
	Key         string `toml:"key"`
	AutoKey     bool   `toml:"auto_key"`
	Capability  string `toml:"capability"`
	Alt         bool   `toml:"alt"`
	Inline      bool   `toml:"inline"`
	Markdown    bool   `toml:"markdown"`
}

// RoleEntry grants capabilities to users
type RoleEntry struct {
	Name         string   `toml:"name"`
	Capabilities []string `toml:"capabilities"`
	Users        []string `toml:"users"`
}

// RegistryID returns the ID the notice is registered under
func (n *NoticeEntry) RegistryID(index int) string {
	if n.ID != "" {
		return n.ID
	}
	return fmt.Sprintf("notice-%d", index)
}

// Validate checks if the NoticeEntry is valid
func (n *NoticeEntry) Validate() error {
	if n.Message == "" {
		return goerr.Wrap(model.ErrEmptyMessage, "notice message is required", goerr.V("id", n.ID))
	}
	if n.Severity != "" && !types.Severity(n.Severity).IsValid() {
		return goerr.Wrap(ErrInvalidSeverity, "unknown severity",
			goerr.V("id", n.ID),
			goerr.V("severity", n.Severity),
		)
	}
	if n.Key != "" && n.AutoKey {
		return goerr.Wrap(ErrInvalidConfig, "key and auto_key are exclusive", goerr.V("id", n.ID))
	}
	if len(n.Key) > usecase.MaxNoticeKeyLength {
		return goerr.Wrap(ErrInvalidConfig, "notice key is too long",
			goerr.V("id", n.ID),
			goerr.V("length", len(n.Key)),
		)
	}
	return nil
}

// Tracking returns how dismissals of the notice are recorded
func (n *NoticeEntry) Tracking() model.DismissalTracking {
	switch {
	case n.AutoKey:
		return model.AutoTracking()
	case n.Key != "":
		return model.ExplicitTracking(n.Key)
	default:
		return model.NoTracking()
	}
}

// Build converts the entry to a notice. Markdown messages are rendered with
// markdown and passed through as markup.
func (n *NoticeEntry) Build(markdown usecase.MessageFormatter) (model.Notice, error) {
	message := n.Message
	if n.Markdown {
		html, err := markdown.Format(n.Message)
		if err != nil {
			return model.Notice{}, goerr.Wrap(err, "failed to render markdown", goerr.V("id", n.ID))
		}
		message = string(html)
	}

	notice := model.NewNotice(message, types.ParseSeverity(n.Severity)).
		WithDismissible(n.Dismissible, n.Tracking()).
		WithAltStyling(n.Alt).
		WithInline(n.Inline)
	if n.Capability != "" {
		notice = notice.WithCapability(types.Capability(n.Capability))
	}
	return notice, nil
}

// Validate checks if the RoleEntry is valid
func (r *RoleEntry) Validate() error {
	if r.Name == "" {
		return goerr.Wrap(ErrInvalidConfig, "role name is required")
	}
	return nil
}

// Validate checks if the NoticeFile is valid
func (f *NoticeFile) Validate() error {
	roles := make(map[string]bool)
	for _, r := range f.Roles {
		if err := r.Validate(); err != nil {
			return err
		}
		if roles[r.Name] {
			return goerr.Wrap(ErrDuplicateRole, "role declared twice", goerr.V(RoleKey, r.Name))
		}
		roles[r.Name] = true
	}

	ids := make(map[string]bool)
	for i, n := range f.Notices {
		if err := n.Validate(); err != nil {
			return goerr.Wrap(err, "invalid notice", goerr.V(NoticeIndexKey, i))
		}
		id := n.RegistryID(i)
		if ids[id] {
			return goerr.Wrap(model.ErrDuplicateNoticeID, "notice declared twice",
				goerr.V(NoticeIndexKey, i),
				goerr.V("id", id),
			)
		}
		ids[id] = true
	}
	return nil
}

// Capabilities returns every capability a notice requires
func (f *NoticeFile) Capabilities() []string {
	seen := make(map[string]bool)
	var caps []string
	for _, n := range f.Notices {
		if n.Capability != "" && !seen[n.Capability] {
			seen[n.Capability] = true
			caps = append(caps, n.Capability)
		}
	}
	return caps
}

// GrantedCapabilities returns every capability some role grants
func (f *NoticeFile) GrantedCapabilities() map[string]bool {
	granted := make(map[string]bool)
	for _, r := range f.Roles {
		for _, c := range r.Capabilities {
			granted[c] = true
		}
	}
	return granted
}

// Registry builds the notice registry in declaration order
func (f *NoticeFile) Registry() (*model.NoticeRegistry, error) {
	registry := model.NewNoticeRegistry()
	markdown := usecase.NewMarkdownFormatter()

	for i, entry := range f.Notices {
		notice, err := entry.Build(markdown)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build notice", goerr.V(NoticeIndexKey, i))
		}
		if err := registry.RegisterStatic(entry.RegistryID(i), notice); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// RoleGate builds the authorization gate from declared roles
func (f *NoticeFile) RoleGate() *usecase.RoleGate {
	gate := usecase.NewRoleGate()
	for _, r := range f.Roles {
		caps := make([]types.Capability, len(r.Capabilities))
		for i, c := range r.Capabilities {
			caps[i] = types.Capability(c)
		}
		gate.AddRole(usecase.Role{Name: r.Name, Capabilities: caps})
		for _, u := range r.Users {
			gate.Assign(types.UserID(u), r.Name)
		}
	}
	return gate
}

// LoadNoticeFile reads and validates a notice file
func LoadNoticeFile(path string) (*NoticeFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator flags
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "notice file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read notice file", goerr.V(ConfigPathKey, path))
	}

	var file NoticeFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse notice file",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()),
		)
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "notice file validation failed", goerr.V(ConfigPathKey, path))
	}
	return &file, nil
}

// Notices holds the CLI flag pointing at the notice file
type Notices struct {
	path string
}

func (x *Notices) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notices",
			Aliases:     []string{"n"},
			Category:    "Notices",
			Usage:       "Path to the TOML file declaring notices and roles",
			Sources:     cli.EnvVars("NOTICEKIT_NOTICES"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured notice file path
func (x *Notices) Path() string {
	return x.path
}

// Configure loads the notice file. Without a path it returns an empty file.
func (x *Notices) Configure() (*NoticeFile, error) {
	if x.path == "" {
		return &NoticeFile{}, nil
	}
	return LoadNoticeFile(x.path)
}
