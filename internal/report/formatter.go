package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// placeholder is rendered in table cells whose value is missing.
const placeholder = "-"

// dateLayout is used for the generation date and in file names.
const dateLayout = "2006-01-02"

// attribution is the fixed last line of every document.
const attribution = "*이 분석 결과는 YouTube Analyzer에서 자동 생성되었습니다.*"

// Document is a formatted analysis report.
type Document struct {
	// Title is the video title the document was generated for.
	Title string

	// Body is the Markdown text, UTF-8 encoded.
	Body string

	// Filename is the suggested download name, see Filename.
	Filename string

	// GeneratedAt is the instant the document was formatted.
	GeneratedAt time.Time
}

// Bytes returns the document body as bytes.
func (d Document) Bytes() []byte {
	return []byte(d.Body)
}

// Formatter renders an AnalysisResult as a Markdown document.
//
// Format is total: every combination of present and absent optional
// sections produces a document, and it never returns an error. Apart from
// the generation date taken from the clock, output depends only on the
// input, so two calls with the same clock produce identical bytes.
//
// Design decision: Sections are written in a fixed order (video info,
// structure, stage 1, stage 2, stage 3, attribution). A stage block is
// emitted only when its section exists on the aggregate, and each optional
// leaf is either omitted from prose or rendered as "-" in table cells.
type Formatter struct {
	now      func() time.Time
	location *time.Location
	printer  *message.Printer
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithClock sets the function used to obtain the generation time.
func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLocation sets the time zone the generation date is expressed in.
func WithLocation(loc *time.Location) FormatterOption {
	return func(f *Formatter) {
		if loc != nil {
			f.location = loc
		}
	}
}

// WithLanguage sets the locale used for thousands separators.
func WithLanguage(tag language.Tag) FormatterOption {
	return func(f *Formatter) {
		f.printer = message.NewPrinter(tag)
	}
}

// NewFormatter creates a Formatter. By default it uses the wall clock,
// the local time zone and Korean number formatting.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		now:      time.Now,
		location: time.Local,
		printer:  message.NewPrinter(language.Korean),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders result. A nil result is treated as an empty aggregate.
func (f *Formatter) Format(result *model.AnalysisResult) Document {
	if result == nil {
		result = &model.AnalysisResult{}
	}
	generatedAt := f.now().In(f.location)

	var sb strings.Builder
	md := markdown.NewMarkdown(&sb)

	f.writeHeader(md, result, generatedAt)
	f.writeVideoInfo(md, result)
	f.writeVideoStructure(md, result)
	f.writeInitialStage(md, result)
	if result.CriticalAnalysis != nil {
		f.writeCriticalStage(md, result)
	}
	if result.AdditionalAnalysis != nil {
		f.writeAdditionalStage(md, result.AdditionalAnalysis)
	}
	f.writeFooter(md)

	return Document{
		Title:       result.VideoTitle,
		Body:        md.String(),
		Filename:    Filename(result.VideoTitle, generatedAt),
		GeneratedAt: generatedAt,
	}
}

// writeHeader writes the title and generation date.
func (f *Formatter) writeHeader(md *markdown.Markdown, r *model.AnalysisResult, at time.Time) {
	title := inline(r.VideoTitle)
	if title == "" {
		title = "제목 없음"
	}
	md.H1(title + " 분석 결과")
	md.PlainText("")
	md.Blockquote("분석일: " + at.Format(dateLayout))
	md.PlainText("")
}

// writeVideoInfo writes the URL, channel and the performance counters
// the backend reported.
func (f *Formatter) writeVideoInfo(md *markdown.Markdown, r *model.AnalysisResult) {
	md.H2("📺 영상 정보")
	md.PlainText("")

	lines := []string{
		field("URL", orDash(inline(r.VideoURL))),
		field("채널", orDash(inline(r.ChannelName))),
	}
	if r.ViewCount > 0 {
		lines = append(lines, field("조회수", f.count(r.ViewCount)+"회"))
	}
	if r.LikeCount > 0 {
		lines = append(lines, field("좋아요", f.count(r.LikeCount)+"개"))
	}
	if r.CommentCount > 0 {
		lines = append(lines, field("댓글", f.count(r.CommentCount)+"개"))
	}
	if r.SubscriberCount > 0 {
		lines = append(lines, field("구독자", f.count(r.SubscriberCount)+"명"))
	}
	if r.ViewSubRatio > 0 {
		lines = append(lines, field("조회/구독 비율", percent(r.ViewSubRatio)))
	}
	if r.PublishedAt != "" {
		lines = append(lines, field("업로드일", inline(r.PublishedAt)))
	}
	md.BulletList(lines...)
	md.PlainText("")
}

// writeVideoStructure writes the structure table when the backend
// produced a structure breakdown.
func (f *Formatter) writeVideoStructure(md *markdown.Markdown, r *model.AnalysisResult) {
	if len(r.VideoStructure) == 0 {
		return
	}

	md.H2("🎬 영상 구조 분석")
	md.PlainText("")
	if s := inline(r.StructureSummary); s != "" {
		md.PlainText(markdown.Bold("구조 요약") + ": " + s)
		md.PlainText("")
	}

	rows := make([][]string, len(r.VideoStructure))
	for i, item := range r.VideoStructure {
		rows[i] = []string{
			fmt.Sprintf("%d", item.Order),
			cell(item.Element),
			cell(item.Type),
			cell(item.Description),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"순서", "요소", "유형", "설명"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the fixed attribution line.
func (f *Formatter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(attribution)
}

// count formats n with locale thousands separators.
func (f *Formatter) count(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// percent renders a ratio such as 0.1234 as "12.3%".
func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// field renders a "**label**: value" list item body.
func field(label, value string) string {
	return markdown.Bold(label) + ": " + value
}

// fieldIf appends a field line to lines when value is not blank.
func fieldIf(lines []string, label, value string) []string {
	if v := inline(value); v != "" {
		return append(lines, field(label, v))
	}
	return lines
}

// inline collapses line breaks so s fits on one Markdown line.
func inline(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

// cell sanitizes s for use inside a table cell. Pipes are escaped and line
// breaks collapsed so user text cannot break the table layout. Blank
// values become the placeholder.
func cell(s string) string {
	s = inline(s)
	if s == "" {
		return placeholder
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// orDash returns s, or the placeholder when s is blank.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// linkCell renders a source as a Markdown link when a URL is known.
// The link text falls back to "링크" when the source name is missing.
func linkCell(text, url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return cell(text)
	}
	label := inline(text)
	if label == "" {
		label = "링크"
	}
	return strings.ReplaceAll(markdown.Link(label, url), "|", `\|`)
}

// linkSuffix renders " ([링크](url))" or nothing.
func linkSuffix(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	return " (" + markdown.Link("링크", url) + ")"
}

// levelOf renders a 1-5 level. An unset level is the empty string and a
// level outside 1-5 is the placeholder.
func levelOf(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 1 || n > 5:
		return placeholder
	default:
		return fmt.Sprintf("%d/5", n)
	}
}
