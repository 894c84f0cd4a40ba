package report

import (
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// writeInitialStage writes the stage-1 block. Summary and key message are
// always present; every other subsection is written only when it has data.
func (f *Formatter) writeInitialStage(md *markdown.Markdown, r *model.AnalysisResult) {
	md.HorizontalRule()
	md.PlainText("")
	md.H2("📊 1단계: 영상 분석")
	md.PlainText("")

	md.H3("영상 요약")
	md.PlainText("")
	md.PlainText(orDash(strings.TrimSpace(r.Summary)))
	md.PlainText("")

	md.H3("핵심 메시지")
	md.PlainText("")
	md.PlainText(orDash(strings.TrimSpace(r.KeyMessage)))
	md.PlainText("")

	f.writeKeyPoints(md, r.KeyPoints)

	if s := strings.TrimSpace(r.InvestmentStrategy); s != "" {
		md.H3("투자 전략")
		md.PlainText("")
		md.PlainText(s)
		md.PlainText("")
	}

	f.writeQuotes(md, r.Quotes)
	f.writePeople(md, r.People)
	f.writeSourceTracking(md, r.SourceTracking)

	if r.SuitabilityAnalysis != nil {
		f.writeSuitability(md, r.SuitabilityAnalysis)
	}
}

func (f *Formatter) writeKeyPoints(md *markdown.Markdown, points []string) {
	items := make([]string, 0, len(points))
	for _, p := range points {
		if p = inline(p); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return
	}
	md.H3("키포인트")
	md.PlainText("")
	md.OrderedList(items...)
	md.PlainText("")
}

// writeQuotes writes one block quote per quote. Quotes whose text is blank
// are skipped; the speaker suffix appears only when a speaker is known.
func (f *Formatter) writeQuotes(md *markdown.Markdown, quotes []model.Quote) {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		text := inline(q.Text)
		if text == "" {
			continue
		}
		line := `"` + text + `"`
		if speaker := inline(q.Speaker); speaker != "" {
			line += " — " + speaker
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}

	md.H3("인용구")
	md.PlainText("")
	for _, line := range lines {
		md.Blockquote(line)
		md.PlainText("")
	}
}

func (f *Formatter) writePeople(md *markdown.Markdown, people []model.Person) {
	items := make([]string, 0, len(people))
	for _, p := range people {
		name := inline(p.Name)
		if name == "" {
			continue
		}
		item := markdown.Bold(name)
		if role := inline(p.Role); role != "" {
			item += " (" + role + ")"
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return
	}
	md.H3("등장 인물")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func (f *Formatter) writeSourceTracking(md *markdown.Markdown, sources []model.SourceTracking) {
	if len(sources) == 0 {
		return
	}
	rows := make([][]string, len(sources))
	for i, s := range sources {
		url := placeholder
		if strings.TrimSpace(s.SourceURL) != "" {
			url = linkCell("링크", s.SourceURL)
		}
		rows[i] = []string{cell(s.Quote), cell(s.SourceTitle), cell(s.SourceType), url}
	}
	md.H3("출처 추적")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"인용", "출처", "유형", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSuitability writes the topic suitability assessment. Sub-judgments
// appear only when the backend flagged them as present.
func (f *Formatter) writeSuitability(md *markdown.Markdown, s *model.SuitabilityAnalysis) {
	var lines []string
	if lv := levelOf(s.SuitabilityScore); lv != "" {
		lines = append(lines, field("적합도 점수", lv))
	}
	lines = fieldIf(lines, "판단", string(s.Judgment))
	lines = fieldIf(lines, "활용 추천", string(s.UsageRecommendation))
	if s.FeasibilityIssue.Exists {
		lines = append(lines, field("실현 가능성 이슈", orDash(inline(s.FeasibilityIssue.Content))))
	}
	if s.HiddenPremise.Exists {
		lines = append(lines, field("숨겨진 전제", orDash(inline(s.HiddenPremise.Content))))
	}
	if s.CriticismPoint.Exists {
		lines = append(lines, field("비판 포인트", orDash(inline(s.CriticismPoint.Content))))
	}
	lines = appendLevel(lines, "타겟 공감도", s.TargetEmpathy)
	lines = appendLevel(lines, "소스 확보 가능성", s.SourceAvailability)
	if s.Judgment.IsUnsuitable() {
		lines = fieldIf(lines, "부적합 사유", s.UnsuitableReason)
	}

	md.H3("소재 적합성 분석")
	md.PlainText("")
	if len(lines) == 0 {
		md.PlainText(placeholder)
	} else {
		md.BulletList(lines...)
	}
	md.PlainText("")
}

// appendLevel appends "label: level - reason" when the level is set.
func appendLevel(lines []string, label string, l model.SuitabilityLevel) []string {
	level := inline(l.Level)
	if level == "" {
		return lines
	}
	if reason := inline(l.Reason); reason != "" {
		level += " - " + reason
	}
	return append(lines, field(label, level))
}
