package rewriter

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/moriyoshi/badass-srs/internal/expand"
)

const DefaultMaxAge = 21

// ExcludeRule matches bare email addresses that must never be rewritten.
type ExcludeRule struct {
	R *regexp.Regexp
}

func compileExcludeRule(match string) (ExcludeRule, error) {
	r, err := regexp.Compile(expand.Expand(match, expand.Env))
	if err != nil {
		return ExcludeRule{}, fmt.Errorf("invalid exclude pattern %q: %w", match, err)
	}
	return ExcludeRule{R: r}, nil
}

func (er *ExcludeRule) UnmarshalStructure(v map[string]interface{}) error {
	match, ok := v["match"].(string)
	if !ok {
		return fmt.Errorf("key 'match' is not a string")
	}
	rule, err := compileExcludeRule(match)
	if err != nil {
		return err
	}
	*er = rule
	return nil
}

func (er ExcludeRule) String() string {
	if er.R == nil {
		return ""
	}
	return er.R.String()
}

type ExcludeRules []ExcludeRule

// Match returns the index of the first rule matching email, or -1.
func (ers ExcludeRules) Match(email string) int {
	for i, rule := range ers {
		if rule.R != nil && rule.R.MatchString(email) {
			return i
		}
	}
	return -1
}

func (ers *ExcludeRules) UnmarshalJSON(b []byte) error {
	var rules interface{}
	err := json.Unmarshal(b, &rules)
	if err != nil {
		return err
	}
	return ers.unmarshalInner(rules)
}

func (ers *ExcludeRules) UnmarshalYAML(n *yaml.Node) error {
	var rules interface{}
	err := n.Decode(&rules)
	if err != nil {
		return err
	}
	return ers.unmarshalInner(rules)
}

func (ers *ExcludeRules) unmarshalInner(rules interface{}) error {
	switch rules := rules.(type) {
	case nil:
		*ers = nil
	case []interface{}:
		_ers := make([]ExcludeRule, 0, len(rules))
		for _, r := range rules {
			var er ExcludeRule
			switch r := r.(type) {
			case string:
				var err error
				er, err = compileExcludeRule(r)
				if err != nil {
					return err
				}
			case map[string]interface{}:
				err := er.UnmarshalStructure(r)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("rule is neither a string nor an object")
			}
			_ers = append(_ers, er)
		}
		*ers = _ers
	default:
		return fmt.Errorf("exclude is not an array")
	}
	return nil
}

// Config describes a rewriter. Values read through LoadConfig have
// ${env.NAME} references expanded.
type Config struct {
	Domain    string       `yaml:"domain" json:"domain"`
	Secrets   []string     `yaml:"secrets" json:"secrets"`
	Separator string       `yaml:"separator" json:"separator"`
	Hash      string       `yaml:"hash" json:"hash"`
	MaxAge    int          `yaml:"max_age" json:"max_age"`
	Verify    bool         `yaml:"verify" json:"verify"`
	Exclude   ExcludeRules `yaml:"exclude" json:"exclude"`
}

func DefaultConfig() Config {
	return Config{
		MaxAge: DefaultMaxAge,
		Verify: true,
	}
}

func (c *Config) expand() {
	c.Domain = expand.Expand(c.Domain, expand.Env)
	c.Separator = expand.Expand(c.Separator, expand.Env)
	c.Hash = expand.Expand(c.Hash, expand.Env)
	secrets := make([]string, 0, len(c.Secrets))
	for _, s := range c.Secrets {
		if s = expand.Expand(s, expand.Env); s != "" {
			secrets = append(secrets, s)
		}
	}
	c.Secrets = secrets
}

// LoadConfig reads a YAML (or JSON, being a subset) document on top of
// DefaultConfig.
func LoadConfig(b []byte) (Config, error) {
	c := DefaultConfig()
	err := yaml.Unmarshal(b, &c)
	if err != nil {
		return Config{}, err
	}
	c.expand()
	return c, nil
}

func LoadConfigFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := LoadConfig(b)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

func hashFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "", "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("unsupported hash %q", name)
	}
}
