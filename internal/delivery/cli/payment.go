package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Xausdorf/swish-pay-hub/swish"
)

func (a *app) newPaymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment requests",
	}
	cmd.AddCommand(a.newPaymentCreateCommand(), a.newPaymentGetCommand())
	return cmd
}

func (a *app) newPaymentCreateCommand() *cobra.Command {
	var (
		amount     string
		reference  string
		payerAlias string
		message    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment request",
		Long: `Create a payment request. With --payer-alias the request is sent to that
payer's app (e-commerce); without it a request token is returned for the m-commerce flow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			client, s, err := a.client(cmd)
			if err != nil {
				return err
			}
			created, err := client.CreatePayment(cmd.Context(), swish.PaymentParams{
				PayeePaymentReference: reference,
				CallbackURL:           s.CallbackURL,
				PayerAlias:            payerAlias,
				Amount:                value,
				Currency:              swish.SEK,
				Message:               message,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in SEK, e.g. 100.00")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Payee payment reference")
	cmd.Flags().StringVar(&payerAlias, "payer-alias", "", "Payer phone number")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message shown to the payer")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (a *app) newPaymentGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a payment request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := client.GetPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}
