package main

import (
	"fmt"

	"github.com/spf13/cobra"

	encoders "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/infrastructure"
)

func newEncodeCmd() *cobra.Command {
	var (
		flags     queryFlags
		dialect   string
		snakeCase bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the wire parameters of a query for a dialect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []encoders.EncoderOption
			if snakeCase {
				opts = append(opts, encoders.WithSnakeCaseIncludes())
			}
			encoder, err := encoders.EncoderByName(dialect, opts...)
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			params, err := encoder.Encode(q)
			if err != nil {
				return err
			}
			if asJSON {
				content, err := json.MarshalIndent(params, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(content))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), params.Encode())
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&dialect, "dialect", "d", encoders.SimpleEncoderName, "simple, jsonapi, openstack or nested")
	cmd.Flags().BoolVar(&snakeCase, "snake-case", false, "snake_case include paths")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parameter tree as JSON")
	return cmd
}
