package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sanandreas/govportal/internal/config"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/policy"
	"github.com/spf13/cobra"
)

// NewGrantRoleCommand creates the "grant-role" command. Role grants happen
// only here and in the first-boot seed; no HTTP route mutates roles.
func NewGrantRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role <email> <role>",
		Short: "Grant a role to a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoles(cmd, args[0], args[1], func(roles []string, role string) []string {
				if slices.Contains(roles, role) {
					return roles
				}
				return append(roles, role)
			})
		},
	}
}

// NewRevokeRoleCommand creates the "revoke-role" command.
func NewRevokeRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-role <email> <role>",
		Short: "Revoke a role from a user account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoles(cmd, args[0], args[1], func(roles []string, role string) []string {
				return slices.DeleteFunc(roles, func(r string) bool { return r == role })
			})
		},
	}
}

func mutateRoles(cmd *cobra.Command, email, role string, apply func([]string, string) []string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if !policy.ValidRole(role) {
		return fmt.Errorf("unknown role %q (valid: superadmin, admin, lspd, lsems, safd, doj)", role)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	gormDB, pool, err := db.New(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	var u model.User
	if err := gormDB.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return fmt.Errorf("load user %s: %w", email, err)
	}

	u.Roles = model.StringSlice(apply([]string(u.Roles), role))
	if err := gormDB.WithContext(ctx).Model(&u).Update("roles", u.Roles).Error; err != nil {
		return fmt.Errorf("update roles: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s roles: %s\n", email, strings.Join(u.Roles, ", "))
	return nil
}
