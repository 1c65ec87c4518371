package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// KeysAdd registers a new API key in the rotation pool.
func (r *Runner) KeysAdd(ctx context.Context, cmd *cli.Command) error {
	key := strings.TrimSpace(cmd.StringArg("key"))
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	if err := r.rot.AddCredential(key); err != nil {
		return err
	}
	r.writePlain("✓ Key added (%d in pool)\n", r.rot.Len())
	return nil
}

// KeysRemove drops an API key from the rotation pool.
func (r *Runner) KeysRemove(ctx context.Context, cmd *cli.Command) error {
	key := strings.TrimSpace(cmd.StringArg("key"))
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	r.rot.RemoveCredential(key)
	r.writePlain("✓ Key removed (%d in pool)\n", r.rot.Len())
	return nil
}

// KeysList prints each key with its usage against today's quota.
func (r *Runner) KeysList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	usage := r.rot.Usage()
	if cmd.Bool("json") {
		return r.writeJSON(usage, true)
	}

	if len(usage) == 0 {
		r.writePlain("No API keys configured. Add one with 'spirify keys add <key>'\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("API Keys (quota limit %d)", r.rot.QuotaLimit()))
	for i, k := range usage {
		marker := " "
		if k.Active {
			marker = "▶"
		}
		r.writePlain("%s %d. %s  %d units (%.1f%%)\n", marker, i+1, maskKey(k.Token), k.Usage, k.Percent)
	}
	r.writePlain("\nTotal usage today: %d units\n", r.rot.TotalUsage())
	return nil
}

// maskKey hides the middle of a key, keeping enough to tell them apart.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
