package openrouter

import "fmt"

func answerPrompt(questionText, assignedTo, transcript string) string {
	return fmt.Sprintf(`You are analyzing a transcript from a company all-hands meeting to answer a specific question.
Please find the answer to this question in the transcript and generate a confidence score between 0-1 indicating how confident you are in the answer, hence, with how much certainty you can say that the answer is correct. A score of 0 means you are not confident at all in the answer, and a score of 1 means you are very confident in the answer. If the question wasn't answered in the transcript, return a score that reflects how confident you are that the question wasn't answered.

## GUIDELINES:

1. You should prioritize excerpts from the person assigned to the question but not limit your answer to that person's excerpts. If the transcript doesn't discriminate between people, consider all information in the transcript as having the same relevance.
2. The question might be directly mentioned in the transcript, if so, give higher priority to the text near the question.
3. Consider that the transcript was generated automatically from a live meeting, so grammar mistakes and other issues may exist.
4. If the question wasn't answered in the transcript, return "There was not enough information in the transcript to answer this question".

## QUESTION:
%s
(Asked to: %s)

## TRANSCRIPT CONTENT:
%s

## OUTPUT FORMAT:
Format your response as a JSON object with the following fields:
{
  "answer_text": "The extracted answer here, or 'This question was not addressed in the transcript' if not found",
  "confidence_score": 0.95
}

Verify that the OUTPUT FORMAT is correct and that the JSON is properly formatted. Only return the JSON object, nothing else.`,
		questionText, assignedTo, transcript)
}

func summaryPrompt(in SummaryInput) string {
	notes := in.Notes
	if notes == "" {
		notes = "No additional notes provided."
	}
	return fmt.Sprintf(`Below is a meeting <transcript> followed by <notes>. Please provide a concise summary of the key points discussed in the meeting, using the notes as guidance. Prioritize using bullets but avoid using only bullets. This is a meeting between Innovera and a client or prospect company called %s. The handler of the meeting on the client side is %s and the Innovera representative is %s.

This meeting is tagged with the following tags: %s. Consider these tags for your context. Specifically, if a meeting is tagged with a tag Feedback, it means the customer is giving feedback on the product for us. Focus the summary on the pain points provided and the suggestions for improvements. If a meeting is tagged with a tag Demo, it means we are demoing the product or a new feature to the client. Focus the summary on the customer's reaction to the demo and the feedback they provide.

## GUIDELINES:
1. There might be other people in the meeting beyond %s and %s from both companies. For each different person infer the relationships/affiliations based on the context and consider that information for your context.
2. If applicable, you can use the notes as guidance to understand important points discussed in the meeting or additional context.
3. Consider that the transcript was generated automatically from a live meeting, so grammar mistakes and other issues may exist.

<Transcript>
%s
</Transcript>

<Notes>
%s
</Notes>

## OUTPUT FORMAT:
Return ONLY a raw JSON object with the following structure, without any markdown formatting or code blocks:
{
  "summary": "Summary of the meeting",
  "people": "Bullet list ([name] - [company]) of all people in the meeting including both mapped and inferred people"
}

Do not include any markdown formatting, code blocks, or additional text. Return only the raw JSON object.`,
		in.CompanyName, in.CustomerName, in.InnoveraPerson, in.Tags,
		in.CustomerName, in.InnoveraPerson,
		in.Transcript, notes)
}

func askAnythingPrompt(question, resources string) string {
	return fmt.Sprintf(`You are answering questions based on company all-hands transcripts and summaries of customer meetings. The user's QUESTION is: "%s"

## GUIDELINES:

Please answer based ONLY on information found in the provided resources. All-hands meeting transcripts are wrapped in <All-hands month>...</All-hands month> tags. Each client logged in this system has all its available conversations under the <client_name>...</client_name> tags. Each summary is wrapped in <conversation - date>...</conversation - date> tags where the date is the date of the meeting. Each conversation contains the tags assigned for that conversation and the summary. Give higher relevance to more recent meetings.

If you can't find a clear answer in any conversation, respond with: "I don't have enough information to answer this question confidently."

Generate a confidence score between 0-1 indicating how confident you are in the answer, hence, with how much certainty you can say that the answer is correct. A score of 0 means you are not confident at all in the answer, and a score of 1 means you are very confident in the answer. If the question wasn't answered in the transcript, return a score that reflects how confident you are that the question wasn't answered.

## CLIENTS AND CONVERSATIONS:
%s

Your answer should be helpful, concise, and based only on the provided information.
Also provide the meeting dates where you found the information in your answer.

## OUTPUT FORMAT:
Format your response as a JSON object with the following fields:
{
  "answer": "Your answer here...",
  "sources": ["Client X > Conversation - Date", "Client Y > Conversation - Date"],
  "confidence": 0.8
}

Verify that the OUTPUT FORMAT is correct and that the JSON is properly formatted. Only return the JSON object, nothing else.`,
		question, resources)
}
