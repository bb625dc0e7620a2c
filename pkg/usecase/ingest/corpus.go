package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/SophieeeeeChen/lawai/pkg/index"
	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/utils/logging"
)

const (
	chunkWords   = 400
	overlapWords = 80
)

// chunkText splits text into word-bounded chunks with a small overlap so
// sentences at chunk edges stay retrievable.
func chunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	for start := 0; start < len(words); start += chunkWords - overlapWords {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ImportPrecedent adds one decided precedent to the durable corpus: its
// summary sections into the precedent-summary collection and its full text,
// chunked, into the precedent-full collection. Both are persisted for index
// reconstruction.
func (uc *UseCase) ImportPrecedent(ctx context.Context, name, text string) error {
	summary, err := uc.Segment(ctx, text)
	if err != nil {
		return err
	}

	caseID := model.NewCaseID()
	caseName := summary.CaseName
	if caseName == "" {
		caseName = name
	}

	var summaryInputs []index.RecordInput
	for _, sec := range summary.Sections() {
		summaryInputs = append(summaryInputs, index.RecordInput{
			Text:     sec.Text,
			CaseID:   caseID,
			CaseName: caseName,
			Section:  sec.Name,
			Source:   name,
		})
	}
	summaryRecords, err := uc.builder.EmbedRecords(ctx, model.SourcePrecedentSummary, summaryInputs)
	if err != nil {
		return err
	}

	var fullInputs []index.RecordInput
	for i, chunk := range chunkText(text) {
		fullInputs = append(fullInputs, index.RecordInput{
			Text:     chunk,
			CaseID:   caseID,
			CaseName: caseName,
			Source:   fmt.Sprintf("%s#%d", name, i),
		})
	}
	fullRecords, err := uc.builder.EmbedRecords(ctx, model.SourcePrecedentFull, fullInputs)
	if err != nil {
		return err
	}

	if err := uc.repo.PutVectorRecords(ctx, append(summaryRecords, fullRecords...)); err != nil {
		return err
	}

	fmt.Fprintf(uc.output, "imported %s: %d summary sections, %d full-text chunks\n",
		caseName, len(summaryRecords), len(fullRecords))
	logging.From(ctx).Info("precedent imported",
		"name", name, "case_name", caseName,
		"summary_sections", len(summaryRecords), "full_chunks", len(fullRecords))
	return nil
}

// statuteEntry is one provision of the statute catalog file.
type statuteEntry struct {
	Source string `yaml:"source"`
	Title  string `yaml:"title"`
	Text   string `yaml:"text"`
}

// ImportStatutes loads a YAML statute catalog into the statute collection and
// persists the records.
func (uc *UseCase) ImportStatutes(ctx context.Context, r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read statute catalog")
	}

	var doc struct {
		Statutes []statuteEntry `yaml:"statutes"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return 0, goerr.Wrap(err, "failed to parse statute catalog")
	}
	if len(doc.Statutes) == 0 {
		return 0, goerr.Wrap(model.ErrInvalidArgument, "statute catalog is empty")
	}

	var inputs []index.RecordInput
	for _, s := range doc.Statutes {
		if s.Source == "" || s.Text == "" {
			return 0, goerr.Wrap(model.ErrInvalidArgument, "incomplete statute entry", goerr.V("source", s.Source))
		}
		text := s.Text
		if s.Title != "" {
			text = s.Title + "\n" + text
		}
		inputs = append(inputs, index.RecordInput{Text: text, Source: s.Source})
	}

	records, err := uc.builder.EmbedRecords(ctx, model.SourceStatute, inputs)
	if err != nil {
		return 0, err
	}
	if err := uc.repo.PutVectorRecords(ctx, records); err != nil {
		return 0, err
	}

	logging.From(ctx).Info("statutes imported", "count", len(records))
	return len(records), nil
}

// RestoreIndexes rebuilds the three durable collections from persisted
// records. Called once at process start; the uploaded-case collection is
// rebuilt lazily per session instead.
func (uc *UseCase) RestoreIndexes(ctx context.Context) error {
	for _, st := range []model.SourceType{
		model.SourcePrecedentFull,
		model.SourcePrecedentSummary,
		model.SourceStatute,
	} {
		records, err := uc.repo.ListVectorRecords(ctx, st)
		if err != nil {
			return err
		}
		if err := uc.builder.Restore(ctx, st, records); err != nil {
			return err
		}
		logging.From(ctx).Debug("collection restored", "source_type", st, "records", len(records))
	}
	return nil
}
