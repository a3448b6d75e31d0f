package commitreveal

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxMessageLength bounds revealed messages unless configured otherwise.
const DefaultMaxMessageLength = 256

// Policy decides which generator pairs Commit accepts. It implements the
// pflag.Value interface.
type Policy uint

const (
	// PolicyCaller accepts any valid caller-supplied pair.
	PolicyCaller Policy = iota
	// PolicyFixed requires g to be the base generator and h the system-wide
	// generator derived from Config.FixedHSeed.
	PolicyFixed
	// PolicyDerived requires g to be the base generator and h to be derived
	// from the committing identity.
	PolicyDerived
)

func (p *Policy) String() string {
	switch *p {
	case PolicyCaller:
		return "caller"
	case PolicyFixed:
		return "fixed"
	case PolicyDerived:
		return "derived"
	default:
		panic("commitreveal: unsupported generator policy")
	}
}

func (p *Policy) Set(s string) error {
	switch strings.ToLower(s) {
	case "caller", "":
		*p = PolicyCaller
	case "fixed":
		*p = PolicyFixed
	case "derived":
		*p = PolicyDerived
	default:
		return fmt.Errorf("commitreveal: invalid generator policy: '%s'", s)
	}
	return nil
}

func (p *Policy) Type() string {
	return "[caller,fixed,derived]"
}

// Config tunes an Engine.
type Config struct {
	MaxMessageLength uint32
	Policy           Policy
	// FixedHSeed is the public seed h is derived from under PolicyFixed.
	FixedHSeed string
	// TerminalReveal rejects reveals of an already revealed commitment with
	// ErrAlreadyRevealed instead of re-verifying them.
	TerminalReveal bool
}

func DefaultConfig() Config {
	return Config{
		MaxMessageLength: DefaultMaxMessageLength,
		Policy:           PolicyCaller,
	}
}

func (cfg *Config) Validate() error {
	switch cfg.Policy {
	case PolicyCaller, PolicyDerived:
	case PolicyFixed:
		if cfg.FixedHSeed == "" {
			return errors.New("commitreveal: fixed generator policy requires a seed")
		}
	default:
		return fmt.Errorf("commitreveal: unsupported generator policy %d", cfg.Policy)
	}
	return nil
}
