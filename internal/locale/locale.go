// Package locale provides the embedded message catalogs shown to users.
//
// Each language ships two YAML files under locales/<lang>/: messages.yaml for
// progress and prompts, errors.yaml for failures and cancellations. Missing
// keys fall back to English and then to the key itself.
package locale

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/updraft/internal/changelog"
	"github.com/adamancini/updraft/internal/types"
)

//go:embed locales
var catalogFS embed.FS

// Fallback is the language used when nothing better matches.
const Fallback = "en"

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Catalog holds the messages for one language.
type Catalog struct {
	Lang     string
	messages map[string]string
	errors   map[string]string
	fallback *Catalog
}

// Vars are the values substituted into message placeholders.
type Vars struct {
	PackageName string
	Version     string
	URL         string
}

// Languages returns the embedded catalog names, sorted.
func Languages() []string {
	entries, err := catalogFS.ReadDir("locales")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Match maps a user preference such as "es_ES.UTF-8", "es-MX" or
// "fr, es;q=0.8" to the closest embedded language.
func Match(pref string) string {
	pref = strings.TrimSpace(pref)
	if i := strings.IndexAny(pref, ".@"); i >= 0 {
		pref = pref[:i]
	}
	pref = strings.ReplaceAll(pref, "_", "-")
	if pref == "" || pref == "C" || pref == "POSIX" {
		return Fallback
	}

	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return Fallback
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Fallback
	}
	base, _ := supported[index].Base()
	return base.String()
}

// Load returns the catalog best matching lang, with English as fallback.
func Load(lang string) (*Catalog, error) {
	en, err := load(Fallback)
	if err != nil {
		return nil, err
	}

	matched := Match(lang)
	if matched == Fallback {
		return en, nil
	}

	c, err := load(matched)
	if err != nil {
		return nil, err
	}
	c.fallback = en
	return c, nil
}

func load(lang string) (*Catalog, error) {
	messages, err := readFile(lang, "messages")
	if err != nil {
		return nil, err
	}
	errs, err := readFile(lang, "errors")
	if err != nil {
		return nil, err
	}
	return &Catalog{Lang: lang, messages: messages, errors: errs}, nil
}

func readFile(lang, kind string) (map[string]string, error) {
	path := fmt.Sprintf("locales/%s/%s.yaml", lang, kind)
	data, err := catalogFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s not found: %w", path, err)
	}

	out := map[string]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return out, nil
}

// Msg returns a progress or prompt message.
func (c *Catalog) Msg(key string) string {
	if v, ok := c.messages[key]; ok {
		return v
	}
	if c.fallback != nil {
		return c.fallback.Msg(key)
	}
	return key
}

// Err returns an error or cancellation message.
func (c *Catalog) Err(key string) string {
	if v, ok := c.errors[key]; ok {
		return v
	}
	if c.fallback != nil {
		return c.fallback.Err(key)
	}
	return key
}

// Msgf returns Msg(key) with vars substituted.
func (c *Catalog) Msgf(key string, vars Vars) string {
	return Format(c.Msg(key), vars)
}

// Errf returns Err(key) with vars substituted.
func (c *Catalog) Errf(key string, vars Vars) string {
	return Format(c.Err(key), vars)
}

// Format substitutes the first occurrence of {{packageName}}, {{version}}
// and {{url}}. Later occurrences and unknown placeholders stay literal, and
// substituted values are never scanned again.
func Format(msg string, vars Vars) string {
	type sub struct {
		token string
		value string
		at    int
	}
	subs := []sub{
		{token: "{{packageName}}", value: vars.PackageName},
		{token: "{{version}}", value: vars.Version},
		{token: "{{url}}", value: vars.URL},
	}

	// Locate every token in the original text first so a value containing
	// another token cannot be expanded.
	var found []sub
	for _, s := range subs {
		if i := strings.Index(msg, s.token); i >= 0 {
			s.at = i
			found = append(found, s)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at < found[j].at })

	var b strings.Builder
	last := 0
	for _, s := range found {
		b.WriteString(msg[last:s.at])
		b.WriteString(s.value)
		last = s.at + len(s.token)
	}
	b.WriteString(msg[last:])
	return b.String()
}

// ChangelogLabels returns the localized changelog table headers.
func (c *Catalog) ChangelogLabels() changelog.Labels {
	return changelog.Labels{
		Type:        c.Msg("changelogType"),
		Description: c.Msg("changelogDescription"),
		Kinds: map[types.ChangeKind]string{
			types.ChangeAdded:   c.Msg("actionAdded"),
			types.ChangeRemoved: c.Msg("actionRemoved"),
			types.ChangeFixed:   c.Msg("actionFixed"),
			types.ChangeNote:    c.Msg("notes"),
		},
	}
}
