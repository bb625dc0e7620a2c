package model

import "strings"

// Topic names one section of a case summary. The five legal topics form a
// closed vocabulary; the remaining sections (overview, outcome_orders,
// reasons_rationale, impact_analysis, uncertainties) are non-topic sections
// that never carry mandatory fields.
type Topic string

const (
	TopicPropertyDivision     Topic = "property_division"
	TopicChildrenParenting    Topic = "children_parenting"
	TopicSpousalMaintenance   Topic = "spousal_maintenance"
	TopicFamilyViolenceSafety Topic = "family_violence_safety"
	TopicPrenupPostnup        Topic = "prenup_postnup"

	SectionOverview         Topic = "overview"
	SectionOutcomeOrders    Topic = "outcome_orders"
	SectionReasonsRationale Topic = "reasons_rationale"
	SectionImpactAnalysis   Topic = "impact_analysis"
	SectionUncertainties    Topic = "uncertainties"
)

// TopicAuto means no topic was selected and retrieval spans all sections
const TopicAuto Topic = ""

// Topics returns the closed set of legal topics
func Topics() []Topic {
	return []Topic{
		TopicPropertyDivision,
		TopicChildrenParenting,
		TopicSpousalMaintenance,
		TopicFamilyViolenceSafety,
		TopicPrenupPostnup,
	}
}

// Validate checks if the topic is one of the closed legal topic set
func (t Topic) Validate() error {
	switch t {
	case TopicPropertyDivision, TopicChildrenParenting, TopicSpousalMaintenance,
		TopicFamilyViolenceSafety, TopicPrenupPostnup:
		return nil
	default:
		return ErrInvalidTopic
	}
}

// IsTopic reports whether t is one of the legal topics (not a non-topic
// section and not auto)
func (t Topic) IsTopic() bool {
	return t.Validate() == nil
}

// Label returns a human readable label, e.g. "Property Division"
func (t Topic) Label() string {
	parts := strings.Split(string(t), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
