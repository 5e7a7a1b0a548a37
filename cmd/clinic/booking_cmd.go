package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clinic-booking-client/internal/booking"
	"clinic-booking-client/internal/model"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func doctorsCmd(a *app) *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors by department",
		RunE: func(cmd *cobra.Command, args []string) error {
			wf := booking.New(a.api, a.log)
			if err := wf.Load(cmd.Context()); err != nil {
				return a.report(err)
			}
			if department != "" {
				if err := wf.SelectDepartment(department); err != nil {
					return fmt.Errorf("%w (have: %s)", err, strings.Join(wf.Departments(), ", "))
				}
			}
			printDoctors(cmd.OutOrStdout(), wf.DoctorsInDepartment())
			return nil
		},
	}
	cmd.Flags().StringVarP(&department, "department", "d", "", "Only doctors in this department")
	return cmd
}

func printDoctors(out io.Writer, docs []model.User) {
	w := table(out)
	fmt.Fprintln(w, "ID\tDOCTOR\tDEPARTMENT")
	for _, d := range docs {
		dep := d.Department
		if dep == "" {
			dep = booking.GeneralDepartment
		}
		fmt.Fprintf(w, "%d\tDr. %s\t%s\n", d.ID, d.FullName, dep)
	}
	w.Flush()
}

func bookCmd(a *app) *cobra.Command {
	var (
		department, date, clock string
		doctorID                int64
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment: pick department, doctor, date and time",
		Long: "Book an appointment. Each missing choice lists its options instead of booking:\n" +
			"  clinic book -d Cardiology\n" +
			"  clinic book --doctor 2 --date 2025-01-12 --time 10:30",
		RunE: a.guard(model.RolePatient, func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			wf := booking.New(a.api, a.log)
			defer wf.Close()
			if err := wf.Load(cmd.Context()); err != nil {
				return err
			}

			if department != "" {
				if err := wf.SelectDepartment(department); err != nil {
					return err
				}
			}
			if doctorID == 0 {
				if department == "" {
					fmt.Fprintf(out, "Departments: %s\n", strings.Join(wf.Departments(), ", "))
				}
				printDoctors(out, wf.DoctorsInDepartment())
				return nil
			}
			if err := wf.SelectDoctor(doctorID); err != nil {
				return err
			}
			if date == "" {
				fmt.Fprintf(out, "Dates: %s\n", strings.Join(booking.CandidateDates(time.Now()), " "))
				return nil
			}
			if err := wf.SelectDate(date); err != nil {
				return err
			}
			if clock == "" {
				fmt.Fprintf(out, "Times: %s\n", strings.Join(booking.CandidateTimes(), " "))
				return nil
			}
			if err := wf.SelectTime(clock); err != nil {
				return err
			}

			apt, err := wf.Submit(cmd.Context())
			if err != nil {
				return err
			}
			sel := wf.Selection()
			fmt.Fprintf(out, "Booked #%d with Dr. %s (%s) on %s.\n", apt.ID, sel.Doctor.FullName, sel.Department, apt.StartTime)
			printAppointments(out, wf.Appointments())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&department, "department", "d", "", "Department")
	cmd.Flags().Int64Var(&doctorID, "doctor", 0, "Doctor id")
	cmd.Flags().StringVar(&date, "date", "", "Date, YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "Time, HH:MM")
	return cmd
}

func appointmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments",
		RunE: a.loggedIn(func(cmd *cobra.Command, args []string) error {
			appts, err := a.api.MyAppointments(cmd.Context())
			if err != nil {
				return err
			}
			printAppointments(cmd.OutOrStdout(), appts)
			return nil
		}),
	}
}

func printAppointments(out io.Writer, appts []model.Appointment) {
	if len(appts) == 0 {
		fmt.Fprintln(out, "No appointments.")
		return
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tSTART\tDOCTOR\tPATIENT\tSTATUS")
	for _, ap := range appts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", ap.ID, ap.StartTime.Format("2006-01-02 15:04"), nameOr(ap.Doctor, ap.DoctorID), nameOr(ap.Patient, ap.PatientID), ap.Status)
	}
	w.Flush()
}

func nameOr(u *model.User, id int64) string {
	if u != nil && u.FullName != "" {
		return u.FullName
	}
	return "#" + strconv.FormatInt(id, 10)
}

func cancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: a.loggedIn(func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid appointment id %q", args[0])
			}
			if err := a.api.CancelAppointment(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appointment #%d cancelled.\n", id)
			return nil
		}),
	}
}
