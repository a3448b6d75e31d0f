// Package commit implements the commit sub-command, the committer's side of
// the protocol.
package commit

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mr-shifu/pedersen-commit/cmd/common"
	"github.com/mr-shifu/pedersen-commit/core/pedersen"
	"github.com/mr-shifu/pedersen-commit/pkg/api"
)

const (
	envMessage = "COMMIT_MESSAGE"
	envSecret  = "SECRET"

	submitTimeout = 10 * time.Second
)

// Options are the commit sub-command flags.
type Options struct {
	Message     string
	Secret      string
	Group       string
	Hash        string
	DeriveLabel string
	Witnesses   bool
	Submit      string
	Identity    string
}

var (
	opts Options

	commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Create a commitment to a message and a secret",
		Long: "Create a commitment to a message and a secret. The message and the secret " +
			"default to the " + envMessage + " and " + envSecret + " environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
)

// Output is printed on success.
type Output struct {
	api.CommitRequest
	M string `json:"m,omitempty"`
	R string `json:"r,omitempty"`
}

// Run builds the commitment described by o, writes it to w and, if requested,
// submits it.
func Run(ctx context.Context, o Options, w io.Writer) error {
	if o.Message == "" {
		o.Message = os.Getenv(envMessage)
	}
	if o.Secret == "" {
		o.Secret = os.Getenv(envSecret)
	}

	scheme, err := common.NewScheme(o.Group, o.Hash)
	if err != nil {
		return err
	}

	var gens *pedersen.Generators
	if o.DeriveLabel != "" {
		gens = scheme.DeriveGenerators([]byte(o.DeriveLabel))
	} else if gens, err = scheme.RandomGenerators(rand.Reader); err != nil {
		return err
	}

	c := scheme.Construct([]byte(o.Message), []byte(o.Secret), gens)
	g, h := gens.Bytes()
	out := Output{
		CommitRequest: api.CommitRequest{
			PointG:  hex.EncodeToString(g),
			PointH:  hex.EncodeToString(h),
			Payload: hex.EncodeToString(c.Payload.Bytes()),
		},
	}
	if o.Witnesses {
		out.M = hex.EncodeToString(c.M.Bytes())
		out.R = hex.EncodeToString(c.R.Bytes())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if o.Submit == "" {
		return nil
	}
	if o.Identity == "" {
		return errors.New("commit: --identity is required with --submit")
	}
	return submit(ctx, o.Submit, o.Identity, &out.CommitRequest)
}

func submit(ctx context.Context, baseURL, identity string, req *api.CommitRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	endpoint, err := url.JoinPath(baseURL, "v1", "commitments", identity)
	if err != nil {
		return errors.Wrap(err, "commit: invalid submit url")
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "commit: submit failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		var e api.HumanReadableError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("commit: server answered %d: %s", resp.StatusCode, e.Msg)
	}
	return nil
}

// Register registers the commit sub-command.
func Register(parentCmd *cobra.Command) {
	f := commitCmd.Flags()
	f.StringVar(&opts.Message, "message", "", "message to commit to (default $"+envMessage+")")
	f.StringVar(&opts.Secret, "secret", "", "blinding secret (default $"+envSecret+")")
	f.StringVar(&opts.Group, "group", "ristretto255", "group: ristretto255 or secp256k1")
	f.StringVar(&opts.Hash, "hash", "sha512", "hash-to-scalar function: sha512, blake3 or shake256")
	f.StringVar(&opts.DeriveLabel, "derive", "", "derive h from this label instead of sampling it")
	f.BoolVar(&opts.Witnesses, "witnesses", false, "also print the scalars m and r")
	f.StringVar(&opts.Submit, "submit", "", "base URL of a server to submit the commitment to")
	f.StringVar(&opts.Identity, "identity", "", "identity to commit as when submitting")
	parentCmd.AddCommand(commitCmd)
}
