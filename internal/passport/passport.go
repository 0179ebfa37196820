// Package passport builds the vehicle history report shown on listing pages.
//
// Until the external verification provider is integrated the report is
// synthesized from a handful of listing fields. Every value is drawn from a
// PRNG seeded with the vehicle ID, so the same listing always renders the
// same report and the output shape already matches the provider's.
package passport

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf16"
)

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

type Level string

const (
	LevelGreen Level = "green"
	LevelAmber Level = "amber"
	LevelRed   Level = "red"
)

// Flag categories. Each one is reported exactly once per report, blacklist
// only when it triggers.
const (
	CategoryOwnership     = "ownership"
	CategoryHypothecation = "hypothecation"
	CategoryOdometer      = "odometer"
	CategoryAccidents     = "accidents"
	CategoryChallans      = "challans"
	CategoryInsurance     = "insurance"
	CategoryRC            = "rc"
	CategoryDamage        = "flood_fire"
	CategoryBlacklist     = "blacklist"
)

const (
	VerdictSuspicious = "SUSPICIOUS"
	VerdictLow        = "LOW"
	VerdictHigh       = "HIGH"
	VerdictNormal     = "NORMAL"
)

const (
	ChallanPaid    = "PAID"
	ChallanPending = "PENDING"
)

const rcLifeYears = 15

type Input struct {
	VehicleID string `json:"vehicleId"`
	Year      int    `json:"year"`
	KM        int    `json:"km"`
	Owner     string `json:"owner"`
	Name      string `json:"name"`
	Fuel      string `json:"fuel"`
}

type Flag struct {
	Category string `json:"category"`
	Level    Level  `json:"level"`
	Message  string `json:"message"`
}

type Ownership struct {
	OwnerCount        int    `json:"ownerCount"`
	RegistrationState string `json:"registrationState"`
	RTOCode           string `json:"rtoCode"`
	Hypothecation     bool   `json:"hypothecation"`
	Lender            string `json:"lender,omitempty"`
}

type Odometer struct {
	Reading      int    `json:"reading"`
	AvgKMPerYear int    `json:"avgKmPerYear"`
	Suspicious   bool   `json:"suspicious"`
	Verdict      string `json:"verdict"`
}

type Accidents struct {
	HasMajorAccident bool  `json:"hasMajorAccident"`
	ClaimCount       int   `json:"claimCount"`
	ClaimYears       []int `json:"claimYears"`
}

type Challan struct {
	Number  string `json:"number"`
	Date    string `json:"date"`
	Offence string `json:"offence"`
	Amount  int    `json:"amount"`
	Status  string `json:"status"`
}

type Registration struct {
	RCValid         bool   `json:"rcValid"`
	RCValidTill     int    `json:"rcValidTill"`
	InsuranceExpiry string `json:"insuranceExpiry"`
	InsuranceActive bool   `json:"insuranceActive"`
	Blacklisted     bool   `json:"blacklisted"`
}

type Damage struct {
	Flood bool `json:"flood"`
	Fire  bool `json:"fire"`
}

type Report struct {
	ReportID      string       `json:"reportId"`
	VehicleID     string       `json:"vehicleId"`
	Name          string       `json:"name"`
	Fuel          string       `json:"fuel"`
	Year          int          `json:"year"`
	Ownership     Ownership    `json:"ownership"`
	Odometer      Odometer     `json:"odometer"`
	Accidents     Accidents    `json:"accidents"`
	Challans      []Challan    `json:"challans"`
	PendingAmount int          `json:"pendingChallanAmount"`
	Registration  Registration `json:"registration"`
	Damage        Damage       `json:"damage"`
	OverallScore  int          `json:"overallScore"`
	Grade         Grade        `json:"grade"`
	Flags         []Flag       `json:"flags"`
}

var registrationStates = []struct{ name, code string }{
	{"Maharashtra", "MH"},
	{"Delhi", "DL"},
	{"Karnataka", "KA"},
	{"Tamil Nadu", "TN"},
	{"Gujarat", "GJ"},
	{"Telangana", "TS"},
	{"Uttar Pradesh", "UP"},
	{"Haryana", "HR"},
}

var lenders = []string{"HDFC Bank", "ICICI Bank", "State Bank of India", "Axis Bank", "Kotak Mahindra Prime"}

var offences = []string{
	"Over-speeding",
	"Red light violation",
	"Driving without seatbelt",
	"Illegal parking",
	"No valid PUC certificate",
	"Using mobile phone while driving",
}

var challanAmounts = []int{500, 1000, 1500, 2000, 5000}

// Generate builds the report as of now.
func Generate(in Input) Report {
	return GenerateAt(in, time.Now())
}

// GenerateAt builds the report against a fixed reference time. Identical
// inputs and the same calendar year yield an identical report.
func GenerateAt(in Input, now time.Time) Report {
	d := newDrawer(in.VehicleID)
	age := max(now.Year()-in.Year, 0)

	r := Report{
		ReportID:  reportID(in.VehicleID, in.Year),
		VehicleID: in.VehicleID,
		Name:      in.Name,
		Fuel:      in.Fuel,
		Year:      in.Year,
	}
	s := &scorer{score: 100}

	r.Ownership = drawOwnership(d, in.Owner)
	switch {
	case r.Ownership.OwnerCount >= 3:
		s.add(CategoryOwnership, LevelRed, -15, fmt.Sprintf("%d or more owners on record", r.Ownership.OwnerCount))
	case r.Ownership.OwnerCount == 2:
		s.add(CategoryOwnership, LevelAmber, -5, "2 owners on record")
	default:
		s.add(CategoryOwnership, LevelGreen, 0, "Single owner since registration")
	}
	if r.Ownership.Hypothecation {
		s.add(CategoryHypothecation, LevelAmber, -8, fmt.Sprintf("Active loan with %s, NOC required for transfer", r.Ownership.Lender))
	} else {
		s.add(CategoryHypothecation, LevelGreen, 0, "No active loan on the vehicle")
	}

	r.Odometer = analyzeOdometer(in.KM, age)
	switch r.Odometer.Verdict {
	case VerdictSuspicious:
		s.add(CategoryOdometer, LevelRed, -25, fmt.Sprintf("Average %d km/year is unusually low, possible odometer tampering", r.Odometer.AvgKMPerYear))
	case VerdictLow:
		s.add(CategoryOdometer, LevelAmber, -5, fmt.Sprintf("Low usage at %d km/year", r.Odometer.AvgKMPerYear))
	case VerdictHigh:
		s.add(CategoryOdometer, LevelAmber, 0, fmt.Sprintf("High usage at %d km/year", r.Odometer.AvgKMPerYear))
	default:
		s.add(CategoryOdometer, LevelGreen, 0, fmt.Sprintf("Normal usage at %d km/year", r.Odometer.AvgKMPerYear))
	}

	r.Accidents = drawAccidents(d, in.Year, in.KM, age)
	switch {
	case r.Accidents.HasMajorAccident:
		s.add(CategoryAccidents, LevelRed, -20, "Major accident reported in insurance records")
	case r.Accidents.ClaimCount > 0:
		s.add(CategoryAccidents, LevelAmber, -8, fmt.Sprintf("%d minor insurance claim(s) on record", r.Accidents.ClaimCount))
	default:
		s.add(CategoryAccidents, LevelGreen, 0, "No accident or insurance claims found")
	}

	r.Challans = drawChallans(d, in.Year, now.Year())
	pending := 0
	for _, c := range r.Challans {
		if c.Status == ChallanPending {
			pending++
			r.PendingAmount += c.Amount
		}
	}
	switch {
	case pending > 0:
		s.add(CategoryChallans, LevelAmber, -10, fmt.Sprintf("%d pending challan(s) worth ₹%d", pending, r.PendingAmount))
	case len(r.Challans) > 0:
		s.add(CategoryChallans, LevelGreen, 0, fmt.Sprintf("%d challan(s) on record, all paid", len(r.Challans)))
	default:
		s.add(CategoryChallans, LevelGreen, 0, "No traffic challans found")
	}

	r.Registration = drawRegistration(d, in.Year, age, now)
	if r.Registration.InsuranceActive {
		s.add(CategoryInsurance, LevelGreen, 0, "Insurance active till "+r.Registration.InsuranceExpiry)
	} else {
		s.add(CategoryInsurance, LevelRed, -12, "Insurance expired on "+r.Registration.InsuranceExpiry)
	}
	if r.Registration.RCValid {
		s.add(CategoryRC, LevelGreen, 0, fmt.Sprintf("RC valid till %d", r.Registration.RCValidTill))
	} else {
		s.add(CategoryRC, LevelRed, -15, fmt.Sprintf("RC expired in %d, vehicle is older than %d years", r.Registration.RCValidTill, rcLifeYears))
	}

	r.Damage = Damage{Flood: d.chance(0.03), Fire: d.chance(0.01)}
	switch {
	case r.Damage.Flood && r.Damage.Fire:
		s.penalize(-60)
		s.flag(CategoryDamage, LevelRed, "Flood and fire damage reported")
	case r.Damage.Flood:
		s.add(CategoryDamage, LevelRed, -30, "Flood damage reported")
	case r.Damage.Fire:
		s.add(CategoryDamage, LevelRed, -30, "Fire damage reported")
	default:
		s.add(CategoryDamage, LevelGreen, 0, "No flood or fire damage found")
	}

	if r.Registration.Blacklisted {
		s.add(CategoryBlacklist, LevelRed, -50, "Vehicle is blacklisted with the RTO")
	}

	r.OverallScore = min(max(s.score, 0), 100)
	r.Grade = GradeFor(r.OverallScore)
	r.Flags = s.flags
	return r
}

// GradeFor maps a 0-100 score to its letter grade.
func GradeFor(score int) Grade {
	switch {
	case score >= 80:
		return GradeA
	case score >= 65:
		return GradeB
	case score >= 50:
		return GradeC
	default:
		return GradeD
	}
}

// GradeColor returns the display color for a grade.
func GradeColor(g Grade) string {
	switch g {
	case GradeA:
		return "#10b981"
	case GradeB:
		return "#3b82f6"
	case GradeC:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// GradeLabel returns the display label for a grade.
func GradeLabel(g Grade) string {
	switch g {
	case GradeA:
		return "Excellent"
	case GradeB:
		return "Good"
	case GradeC:
		return "Fair"
	default:
		return "Poor"
	}
}

// reportID takes the first six UTF-16 code units, the same unit seededRand
// hashes over.
func reportID(vehicleID string, year int) string {
	prefix := vehicleID
	if u := utf16.Encode([]rune(vehicleID)); len(u) > 6 {
		prefix = string(utf16.Decode(u[:6]))
	}
	return fmt.Sprintf("AV-%s-%d", strings.ToUpper(prefix), year)
}

type scorer struct {
	score int
	flags []Flag
}

func (s *scorer) add(category string, level Level, penalty int, msg string) {
	s.penalize(penalty)
	s.flag(category, level, msg)
}

func (s *scorer) penalize(p int) { s.score += p }

func (s *scorer) flag(category string, level Level, msg string) {
	s.flags = append(s.flags, Flag{Category: category, Level: level, Message: msg})
}

func ownerCount(label string) int {
	l := strings.TrimSpace(strings.ToLower(label))
	switch {
	case strings.HasPrefix(l, "1st"):
		return 1
	case strings.HasPrefix(l, "2nd"):
		return 2
	default:
		return 3
	}
}

func drawOwnership(d *drawer, owner string) Ownership {
	st := registrationStates[d.intn(len(registrationStates))]
	o := Ownership{
		OwnerCount:        ownerCount(owner),
		RegistrationState: st.name,
		RTOCode:           fmt.Sprintf("%s-%02d", st.code, 1+d.intn(20)),
		Hypothecation:     d.chance(0.4),
	}
	if o.Hypothecation {
		o.Lender = lenders[d.intn(len(lenders))]
	}
	return o
}

func analyzeOdometer(km, age int) Odometer {
	avg := float64(km)
	if age > 0 {
		avg = float64(km) / float64(age)
	}
	o := Odometer{
		Reading:      km,
		AvgKMPerYear: int(math.Round(avg)),
		Suspicious:   avg < 3000 && km > 0,
	}
	switch {
	case o.Suspicious:
		o.Verdict = VerdictSuspicious
	case avg < 8000:
		o.Verdict = VerdictLow
	case avg > 25000:
		o.Verdict = VerdictHigh
	default:
		o.Verdict = VerdictNormal
	}
	return o
}

func drawAccidents(d *drawer, year, km, age int) Accidents {
	prob := float64(age) * 0.08
	if km > 80000 {
		prob += 0.2
	}
	prob = math.Min(prob, 0.8)

	a := Accidents{
		HasMajorAccident: d.chance(prob * 0.3),
		ClaimYears:       []int{},
	}
	if d.chance(prob) || a.HasMajorAccident {
		a.ClaimCount = 1 + d.intn(min(3, max(age, 1)))
	}
	for i := 0; i < a.ClaimCount; i++ {
		a.ClaimYears = append(a.ClaimYears, year+d.intn(age+1))
	}
	sort.Ints(a.ClaimYears)
	return a
}

func drawChallans(d *drawer, year, currentYear int) []Challan {
	span := max(currentYear-year, 0)
	n := d.intn(4)
	out := make([]Challan, 0, n)
	for i := 0; i < n; i++ {
		c := Challan{Status: ChallanPending}
		if d.chance(0.7) {
			c.Status = ChallanPaid
		}
		c.Offence = offences[d.intn(len(offences))]
		c.Amount = challanAmounts[d.intn(len(challanAmounts))]
		c.Date = fmt.Sprintf("%04d-%02d-%02d", year+d.intn(span+1), 1+d.intn(12), 1+d.intn(28))
		c.Number = fmt.Sprintf("CH%06d", d.intn(1000000))
		out = append(out, c)
	}
	return out
}

func drawRegistration(d *drawer, year, age int, now time.Time) Registration {
	reg := Registration{
		RCValid:     age < rcLifeYears,
		RCValidTill: year + rcLifeYears,
	}
	expired := d.chance(0.15)
	month, day := time.Month(1+d.intn(12)), 1+d.intn(28)
	expiryYear := now.Year() + 1
	if expired {
		expiryYear = now.Year() - 1
	}
	expiry := time.Date(expiryYear, month, day, 0, 0, 0, 0, time.UTC)
	reg.InsuranceExpiry = expiry.Format("2006-01-02")
	reg.InsuranceActive = expiry.After(now)
	reg.Blacklisted = d.chance(0.02)
	return reg
}
