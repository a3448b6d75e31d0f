// Package verify implements the verify sub-command.
package verify

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mr-shifu/pedersen-commit/cmd/common"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	com_commitstore "github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
)

// Options are the verify sub-command flags.
type Options struct {
	Group   string
	Hash    string
	G       string
	H       string
	Payload string
	Message string
	Secret  string
}

var (
	opts Options

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check a revealed message and secret against a commitment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
)

// Run verifies the opening described by o and reports the result to w. A
// non-matching opening is returned as commitreveal.ErrVerificationFailed.
func Run(o Options, w io.Writer) error {
	scheme, err := common.NewScheme(o.Group, o.Hash)
	if err != nil {
		return err
	}

	entry := &com_commitstore.Entry{}
	for _, f := range []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"g", o.G, &entry.G},
		{"h", o.H, &entry.H},
		{"payload", o.Payload, &entry.Payload},
	} {
		if *f.out, err = hex.DecodeString(f.in); err != nil {
			return errors.Wrapf(err, "verify: --%s", f.name)
		}
	}
	if _, err := scheme.DecodeGenerators(entry.G, entry.H); err != nil {
		return err
	}
	if _, err := scheme.Group().DecodePoint(entry.Payload); err != nil {
		return errors.WithMessage(err, "payload")
	}

	if err := commitreveal.Verify(scheme, entry, []byte(o.Message), []byte(o.Secret)); err != nil {
		fmt.Fprintln(w, "invalid")
		return err
	}
	fmt.Fprintln(w, "valid")
	return nil
}

// Register registers the verify sub-command.
func Register(parentCmd *cobra.Command) {
	f := verifyCmd.Flags()
	f.StringVar(&opts.Group, "group", "ristretto255", "group: ristretto255 or secp256k1")
	f.StringVar(&opts.Hash, "hash", "sha512", "hash-to-scalar function: sha512, blake3 or shake256")
	f.StringVar(&opts.G, "g", "", "hex encoded generator g")
	f.StringVar(&opts.H, "h", "", "hex encoded generator h")
	f.StringVar(&opts.Payload, "payload", "", "hex encoded commitment payload")
	f.StringVar(&opts.Message, "message", "", "revealed message")
	f.StringVar(&opts.Secret, "secret", "", "revealed secret")
	parentCmd.AddCommand(verifyCmd)
}
