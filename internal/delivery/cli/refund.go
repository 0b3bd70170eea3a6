package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Xausdorf/swish-pay-hub/swish"
)

func (a *app) newRefundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Refunds",
	}
	cmd.AddCommand(a.newRefundCreateCommand(), a.newRefundGetCommand())
	return cmd
}

func (a *app) newRefundCreateCommand() *cobra.Command {
	var (
		amount            string
		originalReference string
		payerReference    string
		message           string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Refund a paid payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			client, s, err := a.client(cmd)
			if err != nil {
				return err
			}
			created, err := client.CreateRefund(cmd.Context(), swish.RefundParams{
				OriginalPaymentReference: originalReference,
				PayerPaymentReference:    payerReference,
				CallbackURL:              s.CallbackURL,
				Amount:                   value,
				Currency:                 swish.SEK,
				Message:                  message,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in SEK")
	cmd.Flags().StringVarP(&originalReference, "original-reference", "o", "", "Payment reference of the original payment")
	cmd.Flags().StringVar(&payerReference, "payer-reference", "", "Merchant reference for the refund")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message shown to the payer")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("original-reference")

	return cmd
}

func (a *app) newRefundGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a refund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			r, err := client.GetRefund(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
}
