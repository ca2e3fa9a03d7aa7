package main

import (
	"github.com/spf13/cobra"

	"innkeeper/pkg/domain"
)

func newCustomerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "customer", Short: "Manage customers"}
	cmd.AddCommand(
		newCustomerCreateCommand(a),
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print one customer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				customer, ok, err := a.regs.Customers.FindCustomer(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return domain.NewRecordError(domain.EntityCustomer, args[0], domain.ErrNotFound)
				}
				return a.print(map[string]domain.Customer{customer.ID: customer})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every customer",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				customers, err := a.regs.Customers.ListCustomers(cmd.Context())
				if err != nil {
					return err
				}
				out := make(map[string]domain.Customer, len(customers))
				for _, c := range customers {
					out[c.ID] = c
				}
				return a.print(out)
			},
		},
		newCustomerModifyCommand(a),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a customer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.regs.Customers.DeleteCustomer(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newCustomerCreateCommand(a *app) *cobra.Command {
	var customer domain.Customer
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.regs.Customers.CreateCustomer(cmd.Context(), customer)
			if err != nil {
				return err
			}
			return a.print(map[string]domain.Customer{created.ID: created})
		},
	}
	cmd.Flags().StringVar(&customer.ID, "id", "", "customer id (required)")
	cmd.Flags().StringVar(&customer.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&customer.Email, "email", "", "customer email")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newCustomerModifyCommand(a *app) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "modify <id>",
		Short: "Change customer fields; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.CustomerPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("email") {
				patch.Email = &email
			}
			updated, err := a.regs.Customers.ModifyCustomer(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.print(map[string]domain.Customer{updated.ID: updated})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}
