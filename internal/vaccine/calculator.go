package vaccine

// NextDoseFor computes whether rec owes another dose under def and when it is due.
// A missing DateGiven yields a nil due date regardless of the verified flag.
func NextDoseFor(rec Record, def Definition) NextDose {
	if rec.DoseNumber >= def.MaxDoses {
		return NextDose{Complete: true}
	}
	next := NextDose{DoseNumber: rec.DoseNumber + 1}
	if rec.DateGiven != nil {
		due := rec.DateGiven.AddDays(def.DoseIntervalDays)
		next.DueDate = &due
	}
	return next
}

// Catalog indexes definitions by ID.
type Catalog map[string]Definition

func NewCatalog(defs []Definition) Catalog {
	c := make(Catalog, len(defs))
	for _, d := range defs {
		c[d.ID] = d
	}
	return c
}

// Lookup finds the definition a record refers to.
func (c Catalog) Lookup(rec Record) (Definition, bool) {
	d, ok := c[rec.Ref()]
	return d, ok
}

// Upcoming returns one entry per record still owing a dose, in record order.
// Records whose vaccine is not in the catalog are skipped.
func Upcoming(records []Record, defs []Definition) []UpcomingVaccine {
	catalog := NewCatalog(defs)
	out := make([]UpcomingVaccine, 0, len(records))
	for _, rec := range records {
		def, ok := catalog.Lookup(rec)
		if !ok {
			continue
		}
		next := NextDoseFor(rec, def)
		if next.Complete {
			continue
		}
		name := rec.VaccineName
		if name == "" {
			name = def.Name
		}
		out = append(out, UpcomingVaccine{
			VaccineID:      def.ID,
			VaccineName:    name,
			NextDoseNumber: next.DoseNumber,
			NextDueDate:    next.DueDate,
			RecordID:       rec.ID,
			PatientName:    rec.PatientName,
		})
	}
	return out
}

// DedupeByVaccine keeps one entry per (patient, vaccine): the highest next dose,
// ties going to the earliest known due date. First-seen order is kept.
func DedupeByVaccine(in []UpcomingVaccine) []UpcomingVaccine {
	type key struct{ patient, vaccine string }
	pos := make(map[key]int, len(in))
	out := make([]UpcomingVaccine, 0, len(in))
	for _, u := range in {
		k := key{u.PatientName, u.VaccineID}
		i, seen := pos[k]
		if !seen {
			pos[k] = len(out)
			out = append(out, u)
			continue
		}
		if supersedes(u, out[i]) {
			out[i] = u
		}
	}
	return out
}

func supersedes(a, b UpcomingVaccine) bool {
	if a.NextDoseNumber != b.NextDoseNumber {
		return a.NextDoseNumber > b.NextDoseNumber
	}
	switch {
	case a.NextDueDate == nil:
		return false
	case b.NextDueDate == nil:
		return true
	default:
		return a.NextDueDate.Before(*b.NextDueDate)
	}
}
