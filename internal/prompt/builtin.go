package prompt

// builtinTemplates maps template name to content.
var builtinTemplates = map[string]string{
	"structure":          structureTemplate,
	"speech_rate":        speechRateTemplate,
	"prior_knowledge":    priorKnowledgeTemplate,
	"persona":            personaTemplate,
	"comparison":         comparisonTemplate,
	"aggregate":          aggregateTemplate,
	"slide_fixes":        slideFixesTemplate,
	"slide_mockup":       slideMockupTemplate,
	"transcript_cleanup": transcriptCleanupTemplate,
}

const structureTemplate = `You are an agent that evaluates presentations.
Using the speech transcript below and the attached slide deck, review the
structure of the presentation: ordering of topics, clarity of the opening
and closing, and how well the slides follow the spoken narrative.
Respond in at most 300 words of plain prose.

Transcript:
{{transcript}}
`

const speechRateTemplate = `You are an agent that evaluates presentation
delivery. Listen to the attached recording and review two things
separately: the speaking pace (too fast, too slow, uneven) and the
speaking style (filler words, monotony, clarity of articulation).
Be objective and critical; name concrete problems when you hear them.

Return ONLY a JSON object with this shape:
{"rate_review": string, "style_review": string}
Each review is one or two sentences.
`

const priorKnowledgeTemplate = `You are one of several agents evaluating a
presentation. Your dimension is prior knowledge: does the talk demand too
much background from its audience?

Read the transcript below. Identify terms the speaker uses without
explanation, judge what knowledge level each assumes, and whether the
talk explains it adequately.

Return ONLY a JSON object with this shape:
{"summary": string,
 "terms": [{"term": string, "description": string,
            "level": string, "explained_level": string}]}
The summary is at most 300 words.

Transcript:
{{transcript}}
`

const personaTemplate = `You are {{persona}}. Read the presentation
transcript below and give feedback from your own point of view: what
worked for you, what lost you, and what you would change.

Return ONLY a JSON object with this shape:
{"persona": string, "feedback": string}
The feedback is at most 300 words.

Transcript:
{{transcript}}
`

const comparisonTemplate = `You are an agent that tracks a speaker's
progress over time. Below are summaries of the speaker's previous
evaluations, oldest first, followed by the transcript of the current
presentation. Describe how the current presentation compares: what
improved, what regressed, and what stayed the same.

Return ONLY a JSON object with this shape:
{"narrative": string}
The narrative is at most 300 words.

Previous evaluations:
{{history}}

Current transcript:
{{transcript}}
`

const aggregateTemplate = `Below is the feedback an evaluation system
produced for one presentation, one block per dimension.

- Structure: {{structure}}
- Speech: {{speech}}
- Prior knowledge: {{knowledge}}
- Personas: {{personas}}
- Comparison: {{comparison}}

Write an overall verdict (at most 300 words) and rate each dimension on a
1-5 integer scale, 5 being best. A dimension whose feedback reads
"(unavailable)" should be rated 3.

Return ONLY a JSON object with this shape:
{"narrative": string, "structure_score": int, "speech_score": int,
 "knowledge_score": int, "personas_score": int, "comparison_score": int}
`

const slideFixesTemplate = `You are a slide-design reviewer. For the
attached slide deck, propose exactly one fix per page: the page number
(1-based), the problem in one sentence, and the fix in one sentence.
Also name the single weakest page of the deck.

Return ONLY a JSON object with this shape:
{"worst_page": int,
 "fixes": [{"page": int, "issue": string, "suggestion": string}]}
`

const slideMockupTemplate = `You are a slide-design expert. The attached
image is one slide page. Produce a corrected mockup of this page that
addresses the issue below, and describe the changes you made.

Issue: {{issue}}
Suggested fix: {{suggestion}}

Return ONLY a JSON object with this shape:
{"note": string, "image_base64": string}
image_base64 is the corrected page as a base64-encoded PNG, or an empty
string if you cannot produce an image.
`

const transcriptCleanupTemplate = `Rewrite the presentation transcript
below as a clean read-aloud script: fix mistranscriptions, drop filler
words and false starts, keep the speaker's content and order unchanged.

Return ONLY a JSON object with this shape:
{"transcript": string}

Transcript:
{{transcript}}
`
