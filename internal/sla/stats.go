package sla

// Breakdown reduces one classified list into dashboard counters. Total
// always equals the sum of every BySeverity bucket, and of every
// ByChannel bucket.
type Breakdown struct {
	Total      int
	BySeverity map[string]int
	ByChannel  map[string]int
	ByLocation map[string]int
	ByAgent    map[string]int
}

// ExpiryBreakdown adds the mean and maximum overdue minutes; both are 0
// for an empty list.
type ExpiryBreakdown struct {
	Breakdown
	AverageOverdueMinutes float64
	MaxOverdueMinutes     int
}

func newBreakdown() Breakdown {
	return Breakdown{
		BySeverity: make(map[string]int),
		ByChannel:  make(map[string]int),
		ByLocation: make(map[string]int),
		ByAgent:    make(map[string]int),
	}
}

func WarningStats(warnings []Warning) Breakdown {
	b := newBreakdown()
	for _, w := range warnings {
		b.Total++
		b.BySeverity[string(w.Severity)]++
		b.ByChannel[w.ChannelType]++
		b.ByLocation[locationKey(w.LocationName, w.LocationID)]++
		b.ByAgent[agentKey(w.AssigneeName, w.AssigneeID)]++
	}
	return b
}

func ExpiredStats(expired []Expired) ExpiryBreakdown {
	eb := ExpiryBreakdown{Breakdown: newBreakdown()}
	totalOverdue := 0
	for _, e := range expired {
		eb.Total++
		eb.BySeverity[string(e.Severity)]++
		eb.ByChannel[e.ChannelType]++
		eb.ByLocation[locationKey(e.LocationName, e.LocationID)]++
		eb.ByAgent[agentKey(e.AssigneeName, e.AssigneeID)]++
		totalOverdue += e.OverdueMinutes
		if e.OverdueMinutes > eb.MaxOverdueMinutes {
			eb.MaxOverdueMinutes = e.OverdueMinutes
		}
	}
	if eb.Total > 0 {
		eb.AverageOverdueMinutes = float64(totalOverdue) / float64(eb.Total)
	}
	return eb
}

func locationKey(name, id string) string {
	if name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return "unknown"
}

func agentKey(name, id string) string {
	if name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return "unassigned"
}
