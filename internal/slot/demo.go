package slot

// DemoTimes are the hourly columns of the demo coverage grid.
var DemoTimes = []string{"09:00", "10:00", "11:00", "12:00", "13:00"}

type fixture struct {
	time, label, note          string
	capacity, booked, waitList int
}

// DemoCalendar returns the fixed coverage grid shown before live data is
// connected. Times without a fixture are open slots of the room's capacity.
func DemoCalendar() Calendar {
	rooms := []struct {
		id, title, subtitle, doctor, room string
		capacity                          int
		fixtures                          []fixture
	}{
		{
			id: "room-a", title: "Room A · Dr. Chen", subtitle: "General Medicine",
			doctor: "Dr. Chen", room: "Room A", capacity: 10,
			fixtures: []fixture{
				{"09:00", "Follow-up", "Ms. Lin", 10, 10, 0},
				{"10:00", "Consult", "30m", 10, 3, 0},
				{"11:00", "Walk-in", "Queue #02", 10, 10, 2},
				{"12:00", "Break", "Prep", 10, 8, 0},
			},
		},
		{
			id: "room-b", title: "Room B · Dr. Patel", subtitle: "Cardiology",
			doctor: "Dr. Patel", room: "Room B", capacity: 8,
			fixtures: []fixture{
				{"09:00", "Echo review", "J. Ozturk", 8, 8, 0},
				{"10:00", "New consult", "40m", 8, 2, 0},
				{"11:00", "Stress test", "Room prep", 8, 7, 0},
				{"12:00", "Waiting", "Queue #05", 8, 8, 5},
			},
		},
		{
			id: "room-c", title: "Room C · Dr. Alvarez", subtitle: "Dermatology",
			doctor: "Dr. Alvarez", room: "Room C", capacity: 12,
			fixtures: []fixture{
				{"09:00", "Open", "", 12, 1, 0},
				{"10:00", "Procedures", "Blocked", 12, 12, 0},
				{"11:00", "Follow-up", "", 12, 5, 0},
				{"12:00", "Waiting", "Queue #08", 12, 12, 8},
			},
		},
	}

	cal := Calendar{Times: append([]string(nil), DemoTimes...)}
	for _, r := range rooms {
		row := Row{ID: r.id, Title: r.title, Subtitle: r.subtitle}
		for _, clock := range DemoTimes {
			s := Slot{Time: clock, Label: "Open", Capacity: r.capacity}
			for _, f := range r.fixtures {
				if f.time == clock {
					s = Slot{
						Time: clock, Label: f.label, Note: f.note,
						Capacity: f.capacity, Booked: f.booked, WaitingList: f.waitList,
					}
				}
			}
			s.Doctor, s.Room = r.doctor, r.room
			row.Slots = append(row.Slots, s)
		}
		cal.Rows = append(cal.Rows, row)
	}
	return cal
}
