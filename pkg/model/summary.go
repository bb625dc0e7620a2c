package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// CaseSummary is the closed-schema summary of one family law case. Each legal
// topic is an optional sub-record; a nil section means the summarizer found
// nothing for that topic. OutcomeOrders stays nil for undecided or
// hypothetical matters, never an empty placeholder.
type CaseSummary struct {
	CaseName string   `json:"case_name"`
	Court    string   `json:"court"`
	Date     string   `json:"date"`
	Parties  []string `json:"parties"`
	Issues   []string `json:"issues"`
	Facts    []string `json:"facts"`

	Property       *PropertySection    `json:"property,omitempty"`
	Maintenance    *MaintenanceSection `json:"spousal_maintenance,omitempty"`
	Parenting      *ParentingSection   `json:"parenting,omitempty"`
	FamilyViolence *ViolenceSection    `json:"family_violence_safety,omitempty"`
	PrenupPostnup  *PrenupSection      `json:"prenup_postnup,omitempty"`

	OutcomeOrders    []string       `json:"outcome_orders"`
	ReasonsRationale []string       `json:"reasons_rationale"`
	ImpactAnalysis   *ImpactSection `json:"impact_analysis,omitempty"`
	Uncertainties    []string       `json:"uncertainties"`
}

type PropertySection struct {
	AssetPool          []string `json:"asset_pool"`
	Contributions      []string `json:"contributions"`
	FutureNeeds        []string `json:"future_needs"`
	JustEquitable      []string `json:"just_equitable"`
	LivingArrangements []string `json:"living_arrangements"`
	ExistingAgreements []string `json:"existing_agreements"`
}

type MaintenanceSection struct {
	Need             []string `json:"need"`
	CapacityToPay    []string `json:"capacity_to_pay"`
	StatutoryFactors []string `json:"statutory_factors"`
	IncomeExpenses   []string `json:"income_expenses"`
	EarningCapacity  []string `json:"earning_capacity"`
	HealthCare       []string `json:"health_care"`
	RelationshipLen  []string `json:"relationship_length"`
	StandardOfLiving []string `json:"standard_of_living"`
}

type ParentingSection struct {
	ChildAges           []string `json:"child_ages"`
	CurrentArrangements []string `json:"current_arrangements"`
	CaregiverHistory    []string `json:"caregiver_history"`
	Availability        []string `json:"availability"`
	SafetyConcerns      []string `json:"safety_concerns"`
	ChildViews          []string `json:"child_views"`
	Allegations         []string `json:"allegations"`
	ExpertEvidence      []string `json:"expert_evidence"`
	BestInterests       []string `json:"best_interests"`
	Orders              []string `json:"orders"`
}

type ViolenceSection struct {
	Incidents        []string `json:"incidents"`
	ProtectionOrders []string `json:"protection_orders"`
	PoliceCourt      []string `json:"police_court"`
	ChildExposure    []string `json:"child_exposure"`
	SafetyPlan       []string `json:"safety_plan"`
}

type PrenupSection struct {
	AgreementDate        []string `json:"agreement_date"`
	LegalAdvice          []string `json:"legal_advice"`
	FinancialDisclosure  []string `json:"financial_disclosure"`
	PressureDuress       []string `json:"pressure_duress"`
	ChangedCircumstances []string `json:"changed_circumstances"`
}

type ImpactSection struct {
	PivotalFindings []string `json:"pivotal_findings"`
	StatutoryPivots []string `json:"statutory_pivots"`
}

// Section is one rendered excerpt of a summary, keyed by section name, ready
// for embedding and retrieval.
type Section struct {
	Name Topic
	Text string
}

// fieldRef names one list field inside a topic sub-record together with its
// render label. Order matters: it drives both rendering and clarification.
type fieldRef struct {
	key   string
	label string
	slot  *[]string
}

func (s *CaseSummary) propertyFields() []fieldRef {
	p := s.Property
	if p == nil {
		return nil
	}
	return []fieldRef{
		{"asset_pool", "Asset Pool", &p.AssetPool},
		{"contributions", "Contributions", &p.Contributions},
		{"future_needs", "Future Needs", &p.FutureNeeds},
		{"just_equitable", "Just & Equitable", &p.JustEquitable},
		{"living_arrangements", "Living Arrangements", &p.LivingArrangements},
		{"existing_agreements", "Existing Agreements", &p.ExistingAgreements},
	}
}

func (s *CaseSummary) maintenanceFields() []fieldRef {
	m := s.Maintenance
	if m == nil {
		return nil
	}
	return []fieldRef{
		{"need", "Need", &m.Need},
		{"capacity_to_pay", "Capacity to Pay", &m.CapacityToPay},
		{"statutory_factors", "Statutory Factors", &m.StatutoryFactors},
		{"income_expenses", "Income & Expenses", &m.IncomeExpenses},
		{"earning_capacity", "Earning Capacity", &m.EarningCapacity},
		{"health_care", "Health Care", &m.HealthCare},
		{"relationship_length", "Relationship Length", &m.RelationshipLen},
		{"standard_of_living", "Standard of Living", &m.StandardOfLiving},
	}
}

func (s *CaseSummary) parentingFields() []fieldRef {
	p := s.Parenting
	if p == nil {
		return nil
	}
	return []fieldRef{
		{"child_ages", "Child Ages", &p.ChildAges},
		{"current_arrangements", "Current Arrangements", &p.CurrentArrangements},
		{"caregiver_history", "Caregiver History", &p.CaregiverHistory},
		{"availability", "Availability", &p.Availability},
		{"safety_concerns", "Safety Concerns", &p.SafetyConcerns},
		{"child_views", "Child Views", &p.ChildViews},
		{"allegations", "Allegations", &p.Allegations},
		{"expert_evidence", "Expert Evidence", &p.ExpertEvidence},
		{"best_interests", "Best Interests", &p.BestInterests},
		{"orders", "Orders", &p.Orders},
	}
}

func (s *CaseSummary) violenceFields() []fieldRef {
	v := s.FamilyViolence
	if v == nil {
		return nil
	}
	return []fieldRef{
		{"incidents", "Incidents", &v.Incidents},
		{"protection_orders", "Protection Orders", &v.ProtectionOrders},
		{"police_court", "Police/Court", &v.PoliceCourt},
		{"child_exposure", "Child Exposure", &v.ChildExposure},
		{"safety_plan", "Safety Plan", &v.SafetyPlan},
	}
}

func (s *CaseSummary) prenupFields() []fieldRef {
	p := s.PrenupPostnup
	if p == nil {
		return nil
	}
	return []fieldRef{
		{"agreement_date", "Agreement Date", &p.AgreementDate},
		{"legal_advice", "Legal Advice", &p.LegalAdvice},
		{"financial_disclosure", "Financial Disclosure", &p.FinancialDisclosure},
		{"pressure_duress", "Pressure/Duress", &p.PressureDuress},
		{"changed_circumstances", "Changed Circumstances", &p.ChangedCircumstances},
	}
}

// topicFields returns the ordered field table for the topic. When create is
// true, a missing sub-record is allocated first so clarification answers have
// somewhere to land.
func (s *CaseSummary) topicFields(topic Topic, create bool) []fieldRef {
	switch topic {
	case TopicPropertyDivision:
		if create && s.Property == nil {
			s.Property = &PropertySection{}
		}
		return s.propertyFields()
	case TopicSpousalMaintenance:
		if create && s.Maintenance == nil {
			s.Maintenance = &MaintenanceSection{}
		}
		return s.maintenanceFields()
	case TopicChildrenParenting:
		if create && s.Parenting == nil {
			s.Parenting = &ParentingSection{}
		}
		return s.parentingFields()
	case TopicFamilyViolenceSafety:
		if create && s.FamilyViolence == nil {
			s.FamilyViolence = &ViolenceSection{}
		}
		return s.violenceFields()
	case TopicPrenupPostnup:
		if create && s.PrenupPostnup == nil {
			s.PrenupPostnup = &PrenupSection{}
		}
		return s.prenupFields()
	default:
		return nil
	}
}

// FieldValues returns the current values of one topic field, or nil if the
// section or field is absent.
func (s *CaseSummary) FieldValues(topic Topic, field string) []string {
	for _, f := range s.topicFields(topic, false) {
		if f.key == field {
			return *f.slot
		}
	}
	return nil
}

// AppendField appends a value to a topic field, allocating the section when
// needed. Appending never removes or rewrites existing entries.
func (s *CaseSummary) AppendField(topic Topic, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return goerr.Wrap(ErrInvalidArgument, "empty field value", goerr.V("topic", topic), goerr.V("field", field))
	}
	for _, f := range s.topicFields(topic, true) {
		if f.key == field {
			*f.slot = append(*f.slot, value)
			return nil
		}
	}
	return goerr.Wrap(ErrInvalidArgument, "unknown summary field", goerr.V("topic", topic), goerr.V("field", field))
}

func renderItems(lines *[]string, label string, items []string) {
	for _, item := range items {
		if item != "" {
			*lines = append(*lines, "- "+label+": "+item)
		}
	}
}

// Sections renders the summary into named text sections for embedding. Empty
// sections are omitted except overview, which is always emitted so every case
// has at least one retrievable record.
func (s *CaseSummary) Sections() []Section {
	var out []Section
	add := func(name Topic, lines []string) {
		if len(lines) > 0 {
			out = append(out, Section{Name: name, Text: strings.Join(lines, "\n")})
		}
	}

	var overview []string
	if s.CaseName != "" {
		overview = append(overview, "- Case: "+s.CaseName)
	}
	if s.Court != "" {
		overview = append(overview, "- Court: "+s.Court)
	}
	if s.Date != "" {
		overview = append(overview, "- Date: "+s.Date)
	}
	renderItems(&overview, "Party", s.Parties)
	renderItems(&overview, "Fact", s.Facts)
	renderItems(&overview, "Issue", s.Issues)
	if len(overview) == 0 {
		overview = append(overview, "- Case: (unnamed)")
	}
	add(SectionOverview, overview)

	for _, topic := range Topics() {
		var lines []string
		for _, f := range s.topicFields(topic, false) {
			renderItems(&lines, f.label, *f.slot)
		}
		add(topic, lines)
	}

	var outcome []string
	renderItems(&outcome, "Outcome", s.OutcomeOrders)
	add(SectionOutcomeOrders, outcome)

	var reasons []string
	renderItems(&reasons, "Reasons", s.ReasonsRationale)
	add(SectionReasonsRationale, reasons)

	if s.ImpactAnalysis != nil {
		var impact []string
		renderItems(&impact, "Pivotal Finding", s.ImpactAnalysis.PivotalFindings)
		renderItems(&impact, "Statutory Pivot", s.ImpactAnalysis.StatutoryPivots)
		add(SectionImpactAnalysis, impact)
	}

	var uncertain []string
	renderItems(&uncertain, "Uncertainties", s.Uncertainties)
	add(SectionUncertainties, uncertain)

	return out
}

// SectionText returns the rendered text of one named section, or empty string
// if the section renders to nothing.
func (s *CaseSummary) SectionText(name Topic) string {
	for _, sec := range s.Sections() {
		if sec.Name == name {
			return sec.Text
		}
	}
	return ""
}

// listLimits caps each summary list so rendered sections stay within a
// predictable embedding size.
var listLimits = map[string]int{
	"facts": 16, "issues": 10, "outcome_orders": 10, "reasons_rationale": 12,
	"uncertainties": 4, "parties": 8,
	"asset_pool": 8, "contributions": 10, "future_needs": 8, "just_equitable": 8,
	"living_arrangements": 6, "existing_agreements": 6,
	"need": 8, "capacity_to_pay": 8, "statutory_factors": 8, "income_expenses": 8,
	"earning_capacity": 8, "health_care": 6, "relationship_length": 3, "standard_of_living": 6,
	"child_ages": 6, "current_arrangements": 8, "caregiver_history": 8, "availability": 6,
	"safety_concerns": 8, "child_views": 8, "allegations": 8, "expert_evidence": 6,
	"best_interests": 8, "orders": 10,
	"incidents": 8, "protection_orders": 6, "police_court": 6, "child_exposure": 6, "safety_plan": 6,
	"agreement_date": 2, "legal_advice": 6, "financial_disclosure": 6, "pressure_duress": 6,
	"changed_circumstances": 6,
	"pivotal_findings": 8, "statutory_pivots": 8,
}

func capList(key string, items []string) []string {
	var kept []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	limit, ok := listLimits[key]
	if !ok {
		limit = 5
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// ApplyListLimits drops blank entries and truncates every list to its cap.
// Called once after parsing the summarizer's JSON output.
func (s *CaseSummary) ApplyListLimits() {
	s.Parties = capList("parties", s.Parties)
	s.Issues = capList("issues", s.Issues)
	s.Facts = capList("facts", s.Facts)
	if s.OutcomeOrders != nil {
		s.OutcomeOrders = capList("outcome_orders", s.OutcomeOrders)
	}
	s.ReasonsRationale = capList("reasons_rationale", s.ReasonsRationale)
	s.Uncertainties = capList("uncertainties", s.Uncertainties)
	if s.ImpactAnalysis != nil {
		s.ImpactAnalysis.PivotalFindings = capList("pivotal_findings", s.ImpactAnalysis.PivotalFindings)
		s.ImpactAnalysis.StatutoryPivots = capList("statutory_pivots", s.ImpactAnalysis.StatutoryPivots)
	}
	for _, topic := range Topics() {
		for _, f := range s.topicFields(topic, false) {
			*f.slot = capList(f.key, *f.slot)
		}
	}
}

// IsDecided reports whether the summary carries actual court orders.
func (s *CaseSummary) IsDecided() bool {
	return len(s.OutcomeOrders) > 0
}
