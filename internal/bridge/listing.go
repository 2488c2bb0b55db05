package bridge

import (
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintSensors renders sensors ordered by last press, newest first, so a
// human can build a --sensors list from the output.
func PrintSensors(w io.Writer, sensors []Sensor) {
	sorted := make([]Sensor, len(sensors))
	copy(sorted, sensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastPressed.After(sorted[j].LastPressed)
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Sensor", "Last pressed"})
	for _, s := range sorted {
		last := "never"
		if !s.LastPressed.IsZero() {
			last = s.LastPressed.Format("2006-01-02T15:04:05")
		}
		t.AppendRow(table.Row{s.Name, last})
	}
	t.Render()
}

// PrintLights renders lights with the group each belongs to, so a human
// can build a --lights list from the output.
func PrintLights(w io.Writer, lights []Light, groups []Group) {
	groupOf := make(map[string]string)
	for _, g := range groups {
		for _, id := range g.Lights {
			groupOf[id] = g.Name
		}
	}

	sorted := make([]Light, len(lights))
	copy(sorted, lights)
	sort.Slice(sorted, func(i, j int) bool {
		gi, gj := groupOf[strconv.Itoa(sorted[i].ID)], groupOf[strconv.Itoa(sorted[j].ID)]
		if gi != gj {
			return gi < gj
		}
		return sorted[i].Name < sorted[j].Name
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Light", "Group", "State"})
	for _, l := range sorted {
		state := "off"
		if l.On {
			state = "on, bri=" + strconv.Itoa(int(l.Brightness))
		}
		t.AppendRow(table.Row{l.Name, groupOf[strconv.Itoa(l.ID)], state})
	}
	t.Render()
}
