package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCommand 创建 register 子命令
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			payload := map[string]string{
				"username": args[0],
				"password": args[1],
			}
			if email != "" {
				payload["email"] = email
			}
			var resp struct {
				Message string `json:"message"`
				UserID  uint   `json:"user_id"`
			}
			if err := api.doJSON("POST", "/api/auth/register", payload, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered user %q (id %d)\n", args[0], resp.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "optional email address")
	return cmd
}

// NewLoginCommand 创建 login 子命令，成功时打印 token
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and print a bearer token",
		Long:  "Log in and print a bearer token. Export it as CANVAS_TOKEN for the other commands.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newAPIClient(rootOpts)
			payload := map[string]string{
				"username": args[0],
				"password": args[1],
			}
			var resp struct {
				Token string `json:"token"`
			}
			if err := api.doJSON("POST", "/api/auth/login", payload, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
}
