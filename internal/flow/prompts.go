package flow

const summarizeSystem = "You are an expert summarizer, skilled at condensing large documents into concise summaries tailored to different expertise levels."

const summarizePrompt = `You will receive a PDF document and a desired summary level (Beginner, Intermediate, or Expert). Create a summary appropriate for the given level.

PDF Content: the attached document{{with .Filename}} ({{.}}){{end}}
Summary Level: {{.SummaryLevel}}

Start with a short TL;DR paragraph. Then write one paragraph per key topic, each starting with the topic name followed by a colon. Separate paragraphs with a blank line.

Summary:`

const suggestedQuestionsSystem = "You are an AI assistant designed to generate suggested questions based on a PDF summary."

const suggestedQuestionsPrompt = `Given the following PDF summary, generate a list of {{.Count}} suggested questions that a student might ask to further explore the material.

PDF Summary: {{.PDFSummary}}

Your response should be a JSON array of strings, where each string is a suggested question.
Example:
[
  "Explain this in simple words",
  "Give me 3 key points",
  "Ask me a quiz",
  "What are the real world applications of this?",
  "Can you explain this like I'm five?"
]`

const answerSystem = "You are a chatbot that answers questions based on the content of a summarized PDF."

const answerPrompt = `PDF Summary: {{.PDFSummary}}

Question: {{.Question}}

Answer:`

const outputInstruction = `

Respond only with a JSON object that conforms to this JSON schema, without markdown fences:
%s`
