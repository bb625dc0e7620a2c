package clarify_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/SophieeeeeChen/lawai/pkg/clarify"
	"github.com/SophieeeeeChen/lawai/pkg/model"
)

func TestCatalogLoad(t *testing.T) {
	catalog, err := clarify.Load()
	gt.NoError(t, err)

	for _, topic := range model.Topics() {
		fields := catalog.Fields(topic)
		gt.A(t, fields).Longer(0)
		for _, f := range fields {
			gt.S(t, f.Key).NotEqual("")
			gt.S(t, f.Question).NotEqual("")
		}
	}
}

func TestDetectTopic(t *testing.T) {
	catalog, err := clarify.Load()
	gt.NoError(t, err)

	cases := map[string]model.Topic{
		"How will the asset pool and superannuation be split?":            model.TopicPropertyDivision,
		"What custody arrangement is in the children's best interests?":   model.TopicChildrenParenting,
		"Can I claim spousal maintenance given my earning capacity?":      model.TopicSpousalMaintenance,
		"There were violent incidents, can I get a protection order?":     model.TopicFamilyViolenceSafety,
		"Is our binding financial agreement enforceable despite duress?":  model.TopicPrenupPostnup,
		"What is the weather like today?":                                 model.TopicAuto,
	}
	for question, want := range cases {
		gt.Equal(t, catalog.DetectTopic(question), want)
	}
}

func TestMatchedKeywords(t *testing.T) {
	catalog, err := clarify.Load()
	gt.NoError(t, err)

	matched := catalog.MatchedKeywords(
		"How will the asset pool and superannuation be split?",
		model.TopicPropertyDivision, 8)
	gt.A(t, matched).Longer(0)
	gt.True(t, len(matched) <= 8)
	found := false
	for _, kw := range matched {
		if kw == "asset pool" {
			found = true
		}
	}
	gt.True(t, found)

	// unknown topic matches nothing
	gt.A(t, catalog.MatchedKeywords("asset pool", model.TopicAuto, 8)).Length(0)
}

func TestMissingFields(t *testing.T) {
	catalog, err := clarify.Load()
	gt.NoError(t, err)

	summary := &model.CaseSummary{
		Property: &model.PropertySection{
			AssetPool: []string{"family home valued at $800k"},
		},
	}

	missing := catalog.MissingFields(summary, model.TopicPropertyDivision)
	for _, f := range missing {
		gt.S(t, f.Key).NotEqual("asset_pool")
	}
	gt.A(t, missing).Longer(0)

	// nil summary reports every field missing
	all := catalog.MissingFields(nil, model.TopicPropertyDivision)
	gt.Equal(t, len(all), len(catalog.Fields(model.TopicPropertyDivision)))
}

func TestNewPending(t *testing.T) {
	catalog, err := clarify.Load()
	gt.NoError(t, err)

	missing := catalog.MissingFields(nil, model.TopicSpousalMaintenance)
	gt.A(t, missing).Longer(clarify.MaxQuestions)

	pending, err := catalog.NewPending("do I get maintenance?", model.TopicSpousalMaintenance, missing)
	gt.NoError(t, err)
	gt.Equal(t, len(pending.MissingFields), clarify.MaxQuestions)
	gt.Equal(t, len(pending.Questions), len(pending.MissingFields))
	gt.Equal(t, pending.MissingFields[0], missing[0].Key)
	gt.Equal(t, pending.Questions[0], missing[0].Question)
}
