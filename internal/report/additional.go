package report

import (
	"fmt"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// writeAdditionalStage writes the stage-3 production guide.
func (f *Formatter) writeAdditionalStage(md *markdown.Markdown, aa *model.AdditionalAnalysis) {
	md.HorizontalRule()
	md.PlainText("")
	md.H2("🎯 3단계: 추가 분석 (영상 제작 가이드)")
	md.PlainText("")

	f.writeThumbnails(md, aa.ThumbnailSuggestions)
	f.writeTitles(md, aa.TitleSuggestions)
	if aa.VideoLength != nil {
		f.writeVideoLength(md, aa.VideoLength)
	}
	f.writeScriptDirections(md, aa.ScriptDirections)
	if aa.BonusTip != nil {
		f.writeBonusTip(md, aa.BonusTip)
	}
	if vs := aa.VideoSources; vs != nil {
		f.writeInterviewClips(md, vs.InterviewClips)
		f.writeEvidenceSources(md, vs.EvidenceSources)
		f.writeBrollKeywords(md, vs.BrollKeywords)
		f.writeVeo3Prompts(md, vs.Veo3Prompts)
	}
	if aa.PerformancePrediction != nil {
		f.writePerformancePrediction(md, aa.PerformancePrediction)
	}
	if aa.MembershipConnection != nil {
		f.writeMembership(md, aa.MembershipConnection)
	}
}

func (f *Formatter) writeThumbnails(md *markdown.Markdown, items []model.ThumbnailSuggestion) {
	if len(items) == 0 {
		return
	}
	rows := make([][]string, len(items))
	for i, t := range items {
		rows[i] = []string{cell(t.Type), cell(t.Text), cell(t.ClickPsychology)}
	}
	md.H3("썸네일 문구 추천")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"유형", "문구", "클릭 심리"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *Formatter) writeTitles(md *markdown.Markdown, items []model.TitleSuggestion) {
	if len(items) == 0 {
		return
	}
	md.H3("제목 추천")
	md.PlainText("")
	for i, t := range items {
		md.PlainTextf("%d. %s", i+1, markdown.Bold(orDash(inline(t.Title))))
		var meta []string
		if s := inline(t.Pattern); s != "" {
			meta = append(meta, "패턴: "+s)
		}
		if s := inline(t.Target); s != "" {
			meta = append(meta, "타겟: "+s)
		}
		if len(meta) > 0 {
			md.PlainText("   - " + strings.Join(meta, " | "))
		}
		if s := inline(t.Basis); s != "" {
			md.PlainText("   - 근거: " + s)
		}
	}
	md.PlainText("")
}

func (f *Formatter) writeVideoLength(md *markdown.Markdown, vl *model.VideoLength) {
	var lines []string
	lines = fieldIf(lines, "추천 길이", vl.RecommendedLength)
	lines = fieldIf(lines, "형식", vl.Format)
	lines = fieldIf(lines, "판단 근거", vl.JudgmentBasis)
	if len(lines) == 0 && len(vl.Parts) == 0 {
		return
	}

	md.H3("영상 길이 추천")
	md.PlainText("")
	if len(lines) > 0 {
		md.BulletList(lines...)
		md.PlainText("")
	}
	if len(vl.Parts) > 0 {
		rows := make([][]string, len(vl.Parts))
		for i, p := range vl.Parts {
			rows[i] = []string{cell(p.Part), cell(p.TimeRange), cell(p.Content)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"파트", "시간", "내용"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (f *Formatter) writeScriptDirections(md *markdown.Markdown, items []model.ScriptDirection) {
	if len(items) == 0 {
		return
	}
	md.H3("대본 방향")
	md.PlainText("")
	for _, d := range items {
		md.H4(orDash(inline(d.Part)))
		md.PlainText("")
		var lines []string
		lines = fieldIf(lines, "예시", d.Keypoint)
		lines = fieldIf(lines, "감정", d.Emotion)
		lines = fieldIf(lines, "근거", d.Basis)
		if len(lines) > 0 {
			md.BulletList(lines...)
			md.PlainText("")
		}
	}
}

// writeBonusTip writes the bonus tip. Older backends sent a single "tip"
// string instead of topic and summary.
func (f *Formatter) writeBonusTip(md *markdown.Markdown, tip *model.BonusTip) {
	summary := tip.Summary
	if strings.TrimSpace(summary) == "" {
		summary = tip.Tip
	}
	var lines []string
	lines = fieldIf(lines, "주제", tip.Topic)
	lines = fieldIf(lines, "내용", summary)
	lines = fieldIf(lines, "도움 이유", tip.WhyHelpful)
	if src := inline(tip.Source); src != "" {
		lines = append(lines, field("출처", src+linkSuffix(tip.SourceURL)))
	} else if strings.TrimSpace(tip.SourceURL) != "" {
		lines = append(lines, field("출처", markdown.Link("링크", strings.TrimSpace(tip.SourceURL))))
	}
	if len(lines) == 0 {
		return
	}
	md.H3("보너스 꿀팁")
	md.PlainText("")
	md.BulletList(lines...)
	md.PlainText("")
}

func (f *Formatter) writeInterviewClips(md *markdown.Markdown, clips []model.InterviewClip) {
	if len(clips) == 0 {
		return
	}
	md.H3("인터뷰 클립 추천")
	md.PlainText("")
	for _, c := range clips {
		title := inline(c.VideoTitle)
		if title == "" {
			title = inline(c.Topic)
		}
		md.PlainTextf("- %s: %s", markdown.Bold(orDash(inline(c.Person))), orDash(title))
		if q := inline(c.Quote); q != "" {
			md.PlainText(`  - 발언: "` + q + `"`)
		}
		if ts := inline(c.Timestamp); ts != "" {
			md.PlainText("  - 구간: " + ts)
		}
		if link := strings.TrimSpace(c.Link); link != "" {
			md.PlainText("  - " + markdown.Link("영상 링크", link))
		}
	}
	md.PlainText("")
}

func (f *Formatter) writeEvidenceSources(md *markdown.Markdown, sources []model.EvidenceSource) {
	if len(sources) == 0 {
		return
	}
	md.H3("반례 증거 소스")
	md.PlainText("")
	for _, s := range sources {
		label := inline(s.Contradiction)
		if label == "" {
			label = inline(s.Topic)
		}
		md.PlainText("- " + markdown.Bold(orDash(label)))
		if e := inline(s.Evidence); e != "" {
			md.PlainText("  - 증거: " + e)
		}
		if link := strings.TrimSpace(s.Link); link != "" {
			md.PlainText("  - " + markdown.Link("링크", link))
		}
	}
	md.PlainText("")
}

func (f *Formatter) writeBrollKeywords(md *markdown.Markdown, items []model.BrollKeyword) {
	if len(items) == 0 {
		return
	}
	rows := make([][]string, len(items))
	for i, b := range items {
		rows[i] = []string{cell(b.Scene), cell(b.Keyword), cell(b.UsagePart)}
	}
	md.H3("B-roll 키워드")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"장면", "키워드", "활용 파트"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (f *Formatter) writeVeo3Prompts(md *markdown.Markdown, prompts []model.Veo3Prompt) {
	if len(prompts) == 0 {
		return
	}
	md.H3("Veo3 프롬프트")
	md.PlainText("")
	for _, p := range prompts {
		md.H4(orDash(inline(p.Scene)))
		md.PlainText("")
		writeCodeBlock(md, strings.TrimSpace(p.Prompt))
		md.PlainText("")
		if u := inline(p.UsagePart); u != "" {
			md.PlainText("활용: " + u)
			md.PlainText("")
		}
	}
}

// writeCodeBlock writes text as a fenced code block. When text contains a
// run of three or more backticks the fence is made one backtick longer than
// the longest run, so the text cannot close the block.
func writeCodeBlock(md *markdown.Markdown, text string) {
	n := longestBacktickRun(text)
	if n < 3 {
		md.CodeBlocks(markdown.SyntaxHighlight(""), text)
		return
	}
	fence := strings.Repeat("`", n+1)
	md.PlainText(fence + "\n" + text + "\n" + fence)
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

func (f *Formatter) writePerformancePrediction(md *markdown.Markdown, pp *model.PerformancePrediction) {
	md.H3("성과 예측")
	md.PlainText("")

	if len(pp.TargetFits) > 0 {
		lines := make([]string, 0, len(pp.TargetFits))
		for _, t := range pp.TargetFits {
			line := field(orDash(inline(t.Target)), orDash(levelOf(t.FitLevel)))
			if r := inline(t.Reason); r != "" {
				line += " - " + r
			}
			lines = append(lines, line)
		}
		md.H4("타겟 적합도")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}

	if c := pp.Controversy; c != nil {
		var lines []string
		if lv := levelOf(c.Level); lv != "" {
			lines = append(lines, field("레벨", lv))
		}
		lines = fieldIf(lines, "예상 반응", c.ExpectedReactions)
		if len(lines) > 0 {
			md.H4("논쟁 유발도")
			md.PlainText("")
			md.BulletList(lines...)
			md.PlainText("")
		}
	}

	if len(pp.ExpectedComments) > 0 {
		lines := make([]string, 0, len(pp.ExpectedComments))
		for _, c := range pp.ExpectedComments {
			text := inline(c.Comment)
			if text == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf(`[%s] "%s"`, orDash(inline(c.Type)), text))
		}
		if len(lines) > 0 {
			md.H4("예상 댓글")
			md.PlainText("")
			md.BulletList(lines...)
			md.PlainText("")
		}
	}

	if len(pp.SeriesExpansions) > 0 {
		lines := make([]string, 0, len(pp.SeriesExpansions))
		for _, s := range pp.SeriesExpansions {
			lines = append(lines, field(orDash(inline(s.Topic)), orDash(inline(s.Connection))))
		}
		md.H4("시리즈 확장")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}
}

func (f *Formatter) writeMembership(md *markdown.Markdown, mc *model.MembershipConnection) {
	if len(mc.Timings) == 0 && len(mc.Contexts) == 0 && len(mc.Teasers) == 0 && len(mc.ContentSuggestions) == 0 {
		return
	}
	md.H3("멤버십 연결 포인트")
	md.PlainText("")

	if len(mc.Timings) > 0 {
		lines := make([]string, 0, len(mc.Timings))
		for _, t := range mc.Timings {
			line := markdown.Bold(orDash(inline(t.Timing)))
			if pos := inline(t.VideoPosition); pos != "" {
				line += " (" + pos + ")"
			}
			if r := inline(t.Reason); r != "" {
				line += ": " + r
			}
			lines = append(lines, line)
		}
		md.H4("추천 타이밍")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}

	if len(mc.Contexts) > 0 {
		lines := make([]string, 0, len(mc.Contexts))
		for _, c := range mc.Contexts {
			lines = append(lines, fmt.Sprintf(`"%s" → %s`, orDash(inline(c.PreviousLine)), orDash(inline(c.Connection))))
		}
		md.H4("연결 멘트")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}

	if len(mc.Teasers) > 0 {
		lines := make([]string, 0, len(mc.Teasers))
		for _, t := range mc.Teasers {
			lines = append(lines, fmt.Sprintf(`[%s] "%s"`, orDash(inline(t.Situation)), orDash(inline(t.Teaser))))
		}
		md.H4("티저 문구")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}

	if len(mc.ContentSuggestions) > 0 {
		lines := make([]string, 0, len(mc.ContentSuggestions))
		for _, s := range mc.ContentSuggestions {
			lines = append(lines, field(orDash(inline(s.Topic)), orDash(inline(s.Connection))))
		}
		md.H4("멤버십 콘텐츠 제안")
		md.PlainText("")
		md.BulletList(lines...)
		md.PlainText("")
	}
}
