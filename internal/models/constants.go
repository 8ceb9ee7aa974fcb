package models

const (
	DocumentExtension = ".pdf"
	IndexSuffix       = "_faiss_index"
	AnswerSeparator   = "==============================================================================================="
)

// ExitKeywords end the chat loop. Matching is exact and case-sensitive.
var ExitKeywords = []string{"q", "quit", "exit", "close"}

// User-facing text shared by the indexer and chatbot.
const (
	IndexerFileNamePrompt = `Enter pdf file name to be indexed for question answering, along with extension '.pdf' (part of file path after 'pdf_docs/' folder is to be passed):

For ex:
- If you have a file in the path as: './pdf_docs/testFolder/test_doc.pdf', your input should be 'testFolder/test_doc.pdf'
- If you have a file in the path as: './pdf_docs/test_doc2.pdf', your input should be 'test_doc2.pdf'
> `
	ChatFileNamePrompt = `Enter pdf file name which you want to question, along with extension '.pdf' (part of file path after 'pdf_docs/' folder is to be passed):

For ex:
- If you have a file in the path as: './pdf_docs/testFolder/test_doc.pdf', your input should be 'testFolder/test_doc.pdf'
- If you have a file in the path as: './pdf_docs/test_doc2.pdf', your input should be 'test_doc2.pdf'
> `
	UserPrompt = "User: "

	DocumentNotFoundMessage = "Document with specified name does not exist in the directory. Check file name and path carefully!"
	IndexCreatedMessage     = "FAISS index generated successfully! The document is ready for question-answer!"
	PressEnterMessage       = "Press Enter to exit..."

	// SessionFailureMessage is printed for every failure of a chat session,
	// whatever its cause.
	SessionFailureMessage = "Either the file does not exist, or it has not been indexed! Check for the correct file, index it using indexer, and then retry..."
)

var (
	// CondenseQuestionTemplate rewrites a follow-up into a standalone question.
	CondenseQuestionTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, according to the format stated in the follow up question.

Chat History:
{{.chat_history}}
Follow Up Input: {{.question}}
Standalone question:`

	// AnswerSystemTemplate carries the retrieved chunks into the answer call.
	AnswerSystemTemplate = `Use the following pieces of context to answer the user's question.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
----------------
{{.context}}`
)
