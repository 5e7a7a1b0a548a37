package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clinic-booking-client/internal/booking"
	"clinic-booking-client/internal/dashboard"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/router"
	"clinic-booking-client/internal/slot"
)

func patientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "patient", Short: "Patient views"}
	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Upcoming visits and profile status",
		RunE: a.guard(model.RolePatient, func(cmd *cobra.Command, args []string) error {
			me, _ := router.UserFrom(cmd.Context())
			v, err := dashboard.LoadPatient(cmd.Context(), a.api, *me, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Hello, %s\n\n", me.FullName)
			label, hint := v.NextVisit()
			fmt.Fprintf(out, "Next visit: %s  %s\n", label, hint)
			fmt.Fprintf(out, "Upcoming: %d  Past: %d  Cancelled: %d\n", len(v.Upcoming), len(v.Past), len(v.Cancelled))
			printCompletion(cmd, v.Completion)
			fmt.Fprintln(out)
			printAppointments(out, v.Upcoming)
			return nil
		}),
	})
	return cmd
}

func doctorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "doctor", Short: "Doctor views"}

	var day string
	dash := &cobra.Command{
		Use:   "dashboard",
		Short: "Today's schedule and the prioritized waiting list",
		RunE: a.guard(model.RoleDoctor, func(cmd *cobra.Command, args []string) error {
			me, _ := router.UserFrom(cmd.Context())
			d, err := parseDay(day)
			if err != nil {
				return err
			}
			v, err := dashboard.LoadDoctor(cmd.Context(), a.api, *me, d, booking.CandidateTimes(), a.cfg.SlotCapacity)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dr. %s · %s\n\n", me.FullName, d.Format("Mon Jan 2"))
			fmt.Fprintf(out, "Today (%d)\n", len(v.Today))
			printAppointments(out, v.Today)
			fmt.Fprintf(out, "\nUpcoming: %d\n\nWaiting list\n", len(v.Upcoming))
			w := table(out)
			fmt.Fprintln(w, "PATIENT\tPRIORITY\tHISTORY")
			for _, e := range v.Waiting {
				pri := ""
				if e.Priority {
					pri = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Patient.FullName, pri, e.Patient.MedicalHistory)
			}
			return w.Flush()
		}),
	}
	dash.Flags().StringVar(&day, "day", "", "Day to show, YYYY-MM-DD (default today)")

	var calDay string
	var demo bool
	cal := &cobra.Command{
		Use:   "calendar",
		Short: "Slot coverage for a day",
		RunE: a.guard(model.RoleDoctor, func(cmd *cobra.Command, args []string) error {
			if demo {
				printCalendar(cmd.OutOrStdout(), slot.DemoCalendar())
				return nil
			}
			me, _ := router.UserFrom(cmd.Context())
			d, err := parseDay(calDay)
			if err != nil {
				return err
			}
			v, err := dashboard.LoadDoctor(cmd.Context(), a.api, *me, d, booking.CandidateTimes(), a.cfg.SlotCapacity)
			if err != nil {
				return err
			}
			printCalendar(cmd.OutOrStdout(), v.Calendar)
			return nil
		}),
	}
	cal.Flags().StringVar(&calDay, "day", "", "Day to show, YYYY-MM-DD (default today)")
	cal.Flags().BoolVar(&demo, "demo", false, "Show the demo coverage grid")

	cmd.AddCommand(dash, cal)
	return cmd
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse(booking.DateLayout, s)
	if err != nil {
		return time.Time{}, booking.ErrBadDate
	}
	return d, nil
}

func printCalendar(out io.Writer, c slot.Calendar) {
	w := table(out)
	fmt.Fprintf(w, "ROOM\t%s\n", strings.Join(c.Times, "\t"))
	for _, r := range c.Rows {
		cells := make([]string, 0, len(r.Slots))
		for _, s := range r.Slots {
			cells = append(cells, fmt.Sprintf("%s %d/%d", s.Status().Label(), s.Booked, s.Capacity))
		}
		fmt.Fprintf(w, "%s\t%s\n", r.Title, strings.Join(cells, "\t"))
	}
	w.Flush()

	sum := c.Summary()
	fmt.Fprintf(out, "\n%s: %d  %s: %d  %s: %d\n",
		slot.StatusAvailable.Label(), sum[slot.StatusAvailable],
		slot.StatusBooked.Label(), sum[slot.StatusBooked],
		slot.StatusWaiting.Label(), sum[slot.StatusWaiting])
}
