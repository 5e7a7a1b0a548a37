package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clinic-booking-client/internal/model"
)

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile completion",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show how complete the profile is",
		RunE: a.loggedIn(func(cmd *cobra.Command, args []string) error {
			pc, err := a.accounts.ProfileStatus(cmd.Context())
			if err != nil {
				return err
			}
			printCompletion(cmd, pc)
			return nil
		}),
	})

	var (
		name, phone, gender, history, allergies string
		age                                     int
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Fill in profile fields",
		RunE: a.loggedIn(func(cmd *cobra.Command, args []string) error {
			var p model.ProfileUpdate
			set := func(flag string, dst **string, v string) {
				if cmd.Flags().Changed(flag) {
					*dst = &v
				}
			}
			set("name", &p.FullName, name)
			set("phone", &p.Phone, phone)
			set("gender", &p.Gender, gender)
			set("medical-history", &p.MedicalHistory, history)
			set("allergies", &p.Allergies, allergies)
			if cmd.Flags().Changed("age") {
				p.Age = &age
			}

			u, err := a.accounts.CompleteProfile(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated for %s.\n", u.FullName)
			return nil
		}),
	}
	update.Flags().StringVar(&name, "name", "", "Full name")
	update.Flags().StringVar(&phone, "phone", "", "Phone number")
	update.Flags().IntVar(&age, "age", 0, "Age")
	update.Flags().StringVar(&gender, "gender", "", "Gender")
	update.Flags().StringVar(&history, "medical-history", "", "Medical history")
	update.Flags().StringVar(&allergies, "allergies", "", "Allergies")
	cmd.AddCommand(update)
	return cmd
}

func printCompletion(cmd *cobra.Command, pc *model.ProfileCompletion) {
	out := cmd.OutOrStdout()
	if pc.IsComplete {
		fmt.Fprintln(out, "Profile complete (100%).")
		return
	}
	fmt.Fprintf(out, "Profile %d%% complete. Missing: %s\n", pc.CompletionPercentage, strings.Join(pc.MissingFields, ", "))
}
