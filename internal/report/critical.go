package report

import (
	"fmt"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// writeCriticalStage writes the stage-2 block. The caller guarantees that
// r.CriticalAnalysis is non-nil.
func (f *Formatter) writeCriticalStage(md *markdown.Markdown, r *model.AnalysisResult) {
	ca := r.CriticalAnalysis
	name := perspectiveName(ca, r.Perspective)

	md.HorizontalRule()
	md.PlainText("")
	if name != "" {
		md.H2(fmt.Sprintf("🔍 2단계: 비판적 분석 (%s)", name))
	} else {
		md.H2("🔍 2단계: 비판적 분석")
	}
	md.PlainText("")

	f.writeHiddenPremises(md, ca.HiddenPremises)
	f.writeRealisticContradictions(md, ca.RealisticContradictions)
	f.writeSourceBasedContradictions(md, ca.SourceBasedContradictions)
	f.writeHookingPoints(md, ca.HookingPoints)
	f.writeContentDirection(md, ca.ContentDirection)
	if ca.AutomationInsight != nil {
		f.writeAutomationInsight(md, ca.AutomationInsight)
	}
	f.writeAutoTradingConnection(md, ca.AutoTradingConnection)
	f.writePerspectiveInsights(md, name, ca.PerspectiveInsights)
}

// perspectiveName prefers the display name, then the identifier on the
// section, then the identifier on the aggregate.
func perspectiveName(ca *model.CriticalAnalysis, fallback string) string {
	for _, s := range []string{ca.PerspectiveName, ca.Perspective, fallback} {
		if s = inline(s); s != "" {
			return s
		}
	}
	return ""
}

func (f *Formatter) writeHiddenPremises(md *markdown.Markdown, premises []model.HiddenPremise) {
	if len(premises) == 0 {
		return
	}
	rows := make([][]string, len(premises))
	for i, p := range premises {
		rows[i] = []string{cell(p.Premise), cell(p.WhyProblem), linkCell(p.Source, p.SourceURL)}
	}
	md.H3("숨겨진 전제")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"전제", "문제점", "출처"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *Formatter) writeRealisticContradictions(md *markdown.Markdown, items []model.RealisticContradiction) {
	if len(items) == 0 {
		return
	}
	rows := make([][]string, len(items))
	for i, c := range items {
		strategy := c.Strategy
		if strings.TrimSpace(strategy) == "" {
			strategy = c.Point
		}
		basis := c.EvidenceData
		if strings.TrimSpace(basis) == "" {
			basis = c.Evidence
		}
		rows[i] = []string{cell(strategy), cell(c.DifficultyReason), cell(basis), linkCell(c.Source, c.SourceURL)}
	}
	md.H3("현실적 모순")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"전략", "어려운 이유", "근거", "출처"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSourceBasedContradictions writes one numbered sub-block per
// contradiction. Only the richer shape is rendered; entries carrying
// nothing but the older claim/counter_evidence pair fall back to those.
func (f *Formatter) writeSourceBasedContradictions(md *markdown.Markdown, items []model.SourceBasedContradiction) {
	if len(items) == 0 {
		return
	}
	md.H3("출처 기반 모순 분석")
	md.PlainText("")
	for i, c := range items {
		claim := c.OriginalClaim
		if strings.TrimSpace(claim) == "" {
			claim = c.Claim
		}
		counter := c.Counterexample
		if strings.TrimSpace(counter) == "" {
			counter = c.CounterEvidence
		}
		originURL := c.OriginalSourceURL
		if strings.TrimSpace(originURL) == "" {
			originURL = c.SourceURL
		}

		md.H4(fmt.Sprintf("모순 %d", i+1))
		md.PlainText("")
		md.BulletList(
			field("원본 주장", orDash(inline(claim))),
			field("원본 출처", orDash(inline(c.OriginalSource))+linkSuffix(originURL)),
			field("반례", orDash(inline(counter))),
			field("반례 출처", orDash(inline(c.CounterexampleSource))+linkSuffix(c.CounterexampleSourceURL)),
			field("숨겨진 조건", orDash(inline(c.HiddenCondition))),
			field("결론", orDash(inline(c.Conclusion))),
		)
		md.PlainText("")
	}
}

func (f *Formatter) writeHookingPoints(md *markdown.Markdown, points []model.HookingPoint) {
	if len(points) == 0 {
		return
	}
	md.H3("후킹 포인트")
	md.PlainText("")
	for i, h := range points {
		md.PlainTextf("%d. %s", i+1, markdown.Bold(orDash(inline(h.Label()))))
		if s := inline(h.EmpathyReason); s != "" {
			md.PlainText("   - 공감 이유: " + s)
		}
		if s := inline(h.Target); s != "" {
			md.PlainText("   - 타겟: " + s)
		}
		if lv := levelOf(h.Level); lv != "" {
			md.PlainText("   - 레벨: " + lv)
		}
		if s := inline(h.Usage); s != "" {
			md.PlainText("   - 활용: " + s)
		}
	}
	md.PlainText("")
}

// writeContentDirection renders whichever shape the backend sent. The
// ordered steps become one sub-heading per step; the older four-field
// object becomes labelled bullets.
//
// Design decision: The web export emits no body for the four-field object.
// Here its present fields are kept as bullets so re-exporting an old
// analysis does not lose them. The staged sub-sections are never used for it.
func (f *Formatter) writeContentDirection(md *markdown.Markdown, cd *model.ContentDirection) {
	if cd == nil {
		return
	}

	switch cd.Shape {
	case model.ShapeLegacy:
		var lines []string
		lines = fieldIf(lines, "후킹", cd.Legacy.Hook)
		lines = fieldIf(lines, "모순지적", cd.Legacy.Contradiction)
		lines = fieldIf(lines, "공감", cd.Legacy.Empathy)
		lines = fieldIf(lines, "해결암시", cd.Legacy.SolutionHint)
		if len(lines) == 0 {
			return
		}
		md.H3("콘텐츠 방향")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	default:
		if len(cd.Steps) == 0 {
			return
		}
		md.H3("콘텐츠 방향")
		md.PlainText("")
		for _, step := range cd.Steps {
			md.H4(orDash(inline(step.Stage)))
			md.PlainText("")
			var lines []string
			lines = fieldIf(lines, "예시", step.ExampleScript)
			lines = fieldIf(lines, "의도", step.Intention)
			if len(lines) > 0 {
				md.BulletList(lines...)
				md.PlainText("")
			}
		}
	}
}

func (f *Formatter) writeAutomationInsight(md *markdown.Markdown, ai *model.AutomationInsight) {
	md.H3("자동화 관점 인사이트")
	md.PlainText("")

	lines := []string{field("영상 유형", orDash(inline(ai.VideoType)))}
	lines = fieldIf(lines, "유형 이유", ai.VideoTypeReason)
	lines = fieldIf(lines, "핵심 인사이트", ai.CoreInsight)
	md.BulletList(lines...)
	md.PlainText("")

	if len(ai.ProblemSolutionTable) > 0 {
		rows := make([][]string, len(ai.ProblemSolutionTable))
		for i, p := range ai.ProblemSolutionTable {
			rows[i] = []string{cell(p.Problem), cell(p.HumanDifficulty), cell(p.AutomationSolution), cell(p.Implementation)}
		}
		md.H4("문제-해결책 테이블")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"문제점", "사람이 힘든 이유", "자동화 해결책", "구현 방법"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if le := ai.LifeExpansion; le != nil && le.Applicable {
		md.H4("삶의 영역 확장")
		md.PlainText("")
		var lines []string
		areas := make([]string, 0, len(le.Areas))
		for _, a := range le.Areas {
			if a = inline(a); a != "" {
				areas = append(areas, a)
			}
		}
		if len(areas) > 0 {
			lines = append(lines, field("적용 영역", strings.Join(areas, ", ")))
		}
		for _, ex := range le.Examples {
			if area := inline(ex.Area); area != "" {
				lines = append(lines, field(area, orDash(inline(ex.Application))))
			}
		}
		if len(lines) > 0 {
			md.BulletList(lines...)
			md.PlainText("")
		}
	}

	f.writeImprovementCases(md, ai.ImprovementCases)

	if len(ai.DifferentiationPoints) > 0 {
		var lines []string
		for _, d := range ai.DifferentiationPoints {
			if s := inline(d.Summary); s != "" {
				if tpl := inline(d.QuoteTemplate); tpl != "" {
					s += ` - "` + tpl + `"`
				}
				lines = append(lines, s)
			}
		}
		if len(lines) > 0 {
			md.H4("차별화 포인트")
			md.PlainText("")
			md.BulletList(lines...)
			md.PlainText("")
		}
	}

	if ai.ImprovementSearchFailed && len(ai.SuggestedSearchKeywords) > 0 {
		md.H4("추천 검색 키워드")
		md.PlainText("")
		md.PlainText(strings.Join(ai.SuggestedSearchKeywords, ", "))
		md.PlainText("")
	}
}

func (f *Formatter) writeImprovementCases(md *markdown.Markdown, cases []model.ImprovementCase) {
	if len(cases) == 0 {
		return
	}
	rows := make([][]string, len(cases))
	for i, c := range cases {
		source := placeholder
		if strings.TrimSpace(c.SourceLink) != "" {
			source = linkCell("링크", c.SourceLink)
		}
		rows[i] = []string{cell(c.OriginalLimitation), cell(c.Improver), cell(c.Method), cell(c.VerifiedResult), source}
	}
	md.H4("보완 사례")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"원래 한계", "보완자", "방법", "검증 결과", "출처"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *Formatter) writeAutoTradingConnection(md *markdown.Markdown, items []model.AutoTradingConnection) {
	if len(items) == 0 {
		return
	}
	rows := make([][]string, len(items))
	for i, c := range items {
		rows[i] = []string{cell(c.StrategyContent), cell(c.ImplementationMethod), cell(c.TechStack), cell(c.Feasibility), cell(c.Limitation)}
	}
	md.H3("자동매매 연결")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"전략 내용", "구현 방법", "기술 스택", "실현 가능성", "한계"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *Formatter) writePerspectiveInsights(md *markdown.Markdown, name string, insights []string) {
	items := make([]string, 0, len(insights))
	for _, s := range insights {
		if s = inline(s); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return
	}
	if name == "" {
		name = "관점"
	}
	md.H3(name + " 인사이트")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}
