package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/scormlab/scormplay/internal/scorm/pkgindex"
	"github.com/scormlab/scormplay/internal/scorm/vres"
)

// Stateless artifact extraction over an indexed package: plain-text
// transcripts, scraped assessment question sets, and video entries. This is
// a best-effort transform; packages that embed their text in script bundles
// simply yield less.

type Transcript struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

type Question struct {
	Question      string   `json:"question"`
	Answers       []string `json:"answers,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

type Assessment struct {
	FileName  string     `json:"fileName"`
	Questions []Question `json:"questions"`
}

type Video struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
	MIME     string `json:"mime"`
	Size     int64  `json:"size"`
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]+>`)
	blockBreakRe  = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr|section|article)>|<br\s*/?>`)
	spaceRe       = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
)

func isHTMLPath(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

// Transcripts converts every HTML entry to plain text, one transcript per
// entry that yields any text at all.
func Transcripts(pkg *pkgindex.Package) []Transcript {
	var out []Transcript
	for _, e := range pkg.Entries() {
		if e.IsDir || !isHTMLPath(e.Path) {
			continue
		}
		text := HTMLToText(e.Text())
		if text == "" {
			continue
		}
		out = append(out, Transcript{FileName: e.Path, Text: text})
	}
	return out
}

// HTMLToText strips script/style blocks and markup, decodes entities, and
// collapses whitespace.
func HTMLToText(doc string) string {
	s := scriptBlockRe.ReplaceAllString(doc, " ")
	s = styleBlockRe.ReplaceAllString(s, " ")
	s = blockBreakRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var (
	questionBlockRe = regexp.MustCompile(`(?is)<[^>]*class="[^"]*question[^"]*"[^>]*>(.*?)</`)
	choiceLabelRe   = regexp.MustCompile(`(?is)<label[^>]*>(.*?)</label>`)
	correctAttrRe   = regexp.MustCompile(`(?is)data-correct="([^"]*)"`)
	sentenceQRe     = regexp.MustCompile(`(?m)^[^\n?]{12,300}\?$`)
)

// Assessments scrapes question sets out of HTML entries. Marked-up quizzes
// (elements classed "question" with <label> choices) are preferred; failing
// that, question-shaped sentences from the transcript are kept bare.
func Assessments(pkg *pkgindex.Package) []Assessment {
	var out []Assessment
	for _, e := range pkg.Entries() {
		if e.IsDir || !isHTMLPath(e.Path) {
			continue
		}
		qs := scrapeQuestions(e.Text())
		if len(qs) == 0 {
			continue
		}
		out = append(out, Assessment{FileName: e.Path, Questions: qs})
	}
	return out
}

func scrapeQuestions(doc string) []Question {
	var qs []Question
	for _, m := range questionBlockRe.FindAllStringSubmatch(doc, -1) {
		text := HTMLToText(m[1])
		if text == "" {
			continue
		}
		qs = append(qs, Question{Question: text})
	}
	if len(qs) > 0 {
		// Attach choice labels and the marked answer to the scraped set
		// when the document carries them.
		var answers []string
		for _, m := range choiceLabelRe.FindAllStringSubmatch(doc, -1) {
			if t := HTMLToText(m[1]); t != "" {
				answers = append(answers, t)
			}
		}
		var correct string
		if m := correctAttrRe.FindStringSubmatch(doc); m != nil {
			correct = m[1]
		}
		if len(qs) == 1 {
			qs[0].Answers = answers
			qs[0].CorrectAnswer = correct
		}
		return qs
	}
	text := HTMLToText(doc)
	for _, q := range sentenceQRe.FindAllString(text, -1) {
		qs = append(qs, Question{Question: strings.TrimSpace(q)})
	}
	return qs
}

var videoExts = map[string]bool{
	".mp4": true, ".m4v": true, ".webm": true, ".ogv": true,
	".mov": true, ".avi": true, ".wmv": true, ".flv": true,
}

// Videos lists every video entry with its inferred MIME type.
func Videos(pkg *pkgindex.Package) []Video {
	var out []Video
	for _, e := range pkg.Entries() {
		if e.IsDir {
			continue
		}
		lower := strings.ToLower(e.Path)
		dot := strings.LastIndex(lower, ".")
		if dot < 0 || !videoExts[lower[dot:]] {
			continue
		}
		out = append(out, Video{
			FileName: baseName(e.Path),
			Path:     e.Path,
			MIME:     vres.TypeByExtension(e.Path),
			Size:     e.Size(),
		})
	}
	return out
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
