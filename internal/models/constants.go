package models

const (
	// NoContextMessage is returned as the theme text when there are no
	// answers to synthesize from.
	NoContextMessage = "Not enough context in the uploaded documents to answer this question."

	AnswerPromptTemplate = `Given the following context from document %s (Page %d, Paragraph %d):
-------------------
%s
-------------------
Answer the question: "%s" in a concise sentence, citing the document/page/para.
`

	ThemePromptTemplate = `Given these answers from various documents for the question: "%s":
%s

Identify the main themes (1-4) present in these answers. For each theme, provide:
- A short title (e.g., "Theme 1 - Regulatory Non-Compliance")
- A concise, consolidated summary (2-4 sentences) addressing that theme, using evidence from the supporting documents.
- Include supporting document names or IDs and their citations.
- Be concise, avoid repetition, and present each theme clearly.

Format:
Theme 1 - <Short Title>:

 <Citation Document Names>:
 <Consolidated answer>

Theme 2 - <Short Title>:

 <Citation Document Names>:
 <Consolidated answer>

If there is only one clear theme, output just one theme.
`
)

// NegativeSignals marks model responses that state the chunk does not
// address the question. Matched as case-insensitive substrings; an answer
// containing any of them is dropped. Known trade-off: a valid answer that
// happens to contain one of these phrases is dropped too.
var NegativeSignals = []string{
	"does not specify",
	"doesn't provide",
	"not provide",
	"doesn't specify",
	"doesn't mention",
	"not mention",
	"cannot answer",
}
