package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/service"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/similarity"
)

func newEmbedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "embed <image_path>",
		Short: "Print the reference embedding of an image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc, err := buildService(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			ref, err := svc.CreateReference(cmd.Context(), service.CreateReferenceInput{Image: data})
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), ref)
		},
	}
}

func newVerifyCmd(opts *options) *cobra.Command {
	var referencePath string

	cmd := &cobra.Command{
		Use:   "verify <image_path>",
		Short: "Score an image against a stored reference and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := readEmbedding(referencePath)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			svc, err := buildService(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}

			result, err := svc.Verify(cmd.Context(), service.VerifyInput{
				Image:              data,
				ReferenceEmbedding: reference,
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&referencePath, "reference", "r", "", "reference JSON file (output of embed, or a bare array)")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "verified threshold override (default VERIFY_THRESHOLD)")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a.json> <b.json>",
		Short: "Print the similarity of two embeddings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readEmbedding(args[0])
			if err != nil {
				return err
			}
			b, err := readEmbedding(args[1])
			if err != nil {
				return err
			}

			score, err := similarity.Compare(a, b)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", score)
			return err
		},
	}
}
