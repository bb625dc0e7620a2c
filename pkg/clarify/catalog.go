// Package clarify holds the topic catalog that drives clarification rounds:
// per-topic detection keywords, mandatory fields, and the user-facing question
// for each field.
package clarify

import (
	_ "embed"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

//go:embed topics.yaml
var topicsYAML []byte

// MaxQuestions caps one clarification round. Remaining missing fields are
// picked up on a later round if still absent.
const MaxQuestions = 5

// Field is one mandatory fact for a topic, with its user-facing question.
type Field struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Question string `yaml:"question"`
}

type topicEntry struct {
	Name     model.Topic `yaml:"name"`
	Keywords []string    `yaml:"keywords"`
	Fields   []Field     `yaml:"fields"`
}

// Catalog is the loaded topic vocabulary. Topic order follows the catalog
// file and is used to break detection ties deterministically.
type Catalog struct {
	topics []topicEntry
	byName map[model.Topic]*topicEntry
}

// Load parses the embedded catalog and validates that every topic belongs to
// the closed vocabulary and every field carries a question.
func Load() (*Catalog, error) {
	var doc struct {
		Topics []topicEntry `yaml:"topics"`
	}
	if err := yaml.Unmarshal(topicsYAML, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse topic catalog")
	}

	c := &Catalog{
		topics: doc.Topics,
		byName: make(map[model.Topic]*topicEntry, len(doc.Topics)),
	}
	for i := range c.topics {
		t := &c.topics[i]
		if err := t.Name.Validate(); err != nil {
			return nil, goerr.Wrap(err, "unknown topic in catalog", goerr.V("topic", t.Name))
		}
		if len(t.Fields) == 0 {
			return nil, goerr.New("topic has no mandatory fields", goerr.V("topic", t.Name))
		}
		for _, f := range t.Fields {
			if f.Key == "" || f.Question == "" {
				return nil, goerr.New("incomplete field entry", goerr.V("topic", t.Name), goerr.V("key", f.Key))
			}
		}
		c.byName[t.Name] = t
	}
	return c, nil
}

// DetectTopic classifies a question against the topic keyword lists. The
// topic with the most keyword hits wins; ties go to catalog order. A question
// matching nothing returns TopicAuto, which disables section filtering.
func (c *Catalog) DetectTopic(question string) model.Topic {
	q := strings.ToLower(question)
	best := model.TopicAuto
	bestHits := 0
	for _, t := range c.topics {
		hits := 0
		for _, kw := range t.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			best = t.Name
			bestHits = hits
		}
	}
	return best
}

// MatchedKeywords returns the topic's catalog keywords that share a word with
// the question, capped at limit. Used to enrich the retrieval query text.
func (c *Catalog) MatchedKeywords(question string, topic model.Topic, limit int) []string {
	t, ok := c.byName[topic]
	if !ok {
		return nil
	}
	q := strings.ToLower(question)
	var matched []string
	for _, kw := range t.Keywords {
		for _, word := range strings.Fields(strings.ToLower(kw)) {
			if strings.Contains(q, word) {
				matched = append(matched, kw)
				break
			}
		}
		if len(matched) == limit {
			break
		}
	}
	return matched
}

// Fields returns the ordered mandatory field list for a topic.
func (c *Catalog) Fields(topic model.Topic) []Field {
	if t, ok := c.byName[topic]; ok {
		return t.Fields
	}
	return nil
}

// MissingFields returns the topic's mandatory fields that are absent or empty
// in the summary, preserving catalog order. A nil summary reports every field
// as missing.
func (c *Catalog) MissingFields(summary *model.CaseSummary, topic model.Topic) []Field {
	var missing []Field
	for _, f := range c.Fields(topic) {
		if summary == nil || len(summary.FieldValues(topic, f.Key)) == 0 {
			missing = append(missing, f)
		}
	}
	return missing
}

// NewPending builds a clarification round from missing fields, capping the
// number of questions at MaxQuestions while keeping fields and questions 1:1.
func (c *Catalog) NewPending(question string, topic model.Topic, missing []Field) (*model.PendingClarification, error) {
	if len(missing) > MaxQuestions {
		missing = missing[:MaxQuestions]
	}
	p := &model.PendingClarification{
		Question:  question,
		Topic:     topic,
		CreatedAt: time.Now(),
	}
	for _, f := range missing {
		p.MissingFields = append(p.MissingFields, f.Key)
		p.Questions = append(p.Questions, f.Question)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
