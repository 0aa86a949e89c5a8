package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/studypack/studypacktest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testConfig = Config{ImageModel: "flash-image", ImageHDModel: "pro-image"}

func newTestGateway(text llm.Provider, images llm.ImageProvider) *Gateway {
	return New(text, images, testConfig, logger.Nop())
}

func packResponse(d studypack.StudyPackData) llm.MockResponse {
	return llm.MockResponse{Content: studypacktest.JSON(d)}
}

func TestGeneratePack_HappyPath(t *testing.T) {
	want := studypacktest.Photosynthesis()
	mock := llm.NewMockProvider(packResponse(want))
	g := newTestGateway(mock, nil)

	got, err := g.GeneratePack(context.Background(), studypacktest.Input())
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	req, _ := mock.LastCall()
	assert.Equal(t, packSystemPrompt, req.System)
	assert.Same(t, StudyPackSchema, req.Schema)
	require.Len(t, req.Messages, 1)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "GRADE: Grade 8\n")
	assert.Contains(t, msg, "SUBJECT: Biology\n")
	assert.Contains(t, msg, "CHAPTER TITLE: Photosynthesis\n")
	assert.Contains(t, msg, "LANGUAGE: English\n")
	assert.Contains(t, msg, "key_terms: Exactly 20 items.")
	assert.Contains(t, msg, "CHAPTER TEXT:\n"+strings.TrimSpace(studypacktest.Input().ChapterText))
	assert.Empty(t, req.Messages[0].Attachments)
}

func TestGeneratePack_StripsCodeFences(t *testing.T) {
	raw := "```json\n" + string(studypacktest.JSON(studypacktest.Photosynthesis())) + "\n```"
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(raw)})

	got, err := newTestGateway(mock, nil).GeneratePack(context.Background(), studypacktest.Input())
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", got.Meta.ChapterTitle)
}

func TestGeneratePack_PDFIsAttached(t *testing.T) {
	mock := llm.NewMockProvider(packResponse(studypacktest.Photosynthesis()))
	in := studypacktest.Input()
	in.ChapterText = ""
	in.PDFData = base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n"))

	_, err := newTestGateway(mock, nil).GeneratePack(context.Background(), in)
	require.NoError(t, err)

	req, _ := mock.LastCall()
	msg := req.Messages[0]
	assert.True(t, strings.HasSuffix(msg.Content, "CHAPTER TEXT:\n"+pdfPlaceholder))
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].MIMEType)
	assert.Equal(t, in.PDFData, msg.Attachments[0].Data)
}

func TestGeneratePack_MissingCredential(t *testing.T) {
	_, err := newTestGateway(nil, nil).GeneratePack(context.Background(), studypacktest.Input())
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "text", ce.Service)
}

func TestGeneratePack_InvalidInputSkipsProvider(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := newTestGateway(mock, nil).GeneratePack(context.Background(), studypack.Input{Subject: "Biology"})

	var in *studypack.InputError
	require.ErrorAs(t, err, &in)
	assert.Equal(t, 0, mock.CallCount())
}

func TestGeneratePack_ResponseErrors(t *testing.T) {
	outOfRange := studypacktest.Photosynthesis()
	outOfRange.Quiz.Questions[3].CorrectIndex = 4

	blankTerm := studypacktest.Photosynthesis()
	blankTerm.KeyTerms[0].Meaning = "   "

	var withoutQuiz map[string]any
	require.NoError(t, json.Unmarshal(studypacktest.JSON(studypacktest.Photosynthesis()), &withoutQuiz))
	delete(withoutQuiz, "quiz")
	noQuiz, _ := json.Marshal(withoutQuiz)

	var withoutQuestions map[string]any
	require.NoError(t, json.Unmarshal(studypacktest.JSON(studypacktest.Photosynthesis()), &withoutQuestions))
	delete(withoutQuestions, "important_questions")
	noQuestions, _ := json.Marshal(withoutQuestions)

	noFiveMark := studypacktest.Photosynthesis()
	noFiveMark.ImportantQuestions.FiveMark = nil

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "empty",
			content: "  \n ",
			check: func(t *testing.T, err error) {
				var e *EmptyResponseError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "fences only",
			content: "```json\n```",
			check: func(t *testing.T, err error) {
				var e *EmptyResponseError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "malformed json",
			content: `{"meta": {`,
			check: func(t *testing.T, err error) {
				var e *ParseError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "missing required section",
			content: string(noQuiz),
			check: func(t *testing.T, err error) {
				var e *SchemaMismatchError
				require.ErrorAs(t, err, &e)
				assert.Error(t, e.Err)
			},
		},
		{
			name:    "missing important questions",
			content: string(noQuestions),
			check: func(t *testing.T, err error) {
				var e *SchemaMismatchError
				require.ErrorAs(t, err, &e)
				assert.ErrorContains(t, e, "important_questions")
			},
		},
		{
			name:    "null question group",
			content: string(studypacktest.JSON(noFiveMark)),
			check: func(t *testing.T, err error) {
				var e *SchemaMismatchError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "correct index out of range",
			content: string(studypacktest.JSON(outOfRange)),
			check: func(t *testing.T, err error) {
				var e *SchemaMismatchError
				require.ErrorAs(t, err, &e)
				require.Len(t, e.Violations, 1)
				assert.Equal(t, "quiz.questions[3].correct_index", e.Violations[0].Path)
			},
		},
		{
			name:    "blank required string",
			content: string(studypacktest.JSON(blankTerm)),
			check: func(t *testing.T, err error) {
				var e *SchemaMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "key_terms[0].meaning", e.Violations[0].Path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			data, err := newTestGateway(mock, nil).GeneratePack(context.Background(), studypacktest.Input())
			assert.Nil(t, data)
			tt.check(t, err)
		})
	}
}

func TestGeneratePack_ProviderErrorKeepsCause(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	_, err := newTestGateway(mock, nil).GeneratePack(context.Background(), studypacktest.Input())

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	var rl *llm.ErrRateLimit
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, "provider", Kind(err))
	assert.Equal(t, rl.Error(), pe.Error())
	assert.Equal(t, "generate pack", pe.Op)
}

func TestChat_ProviderErrorMessageIsUnchanged(t *testing.T) {
	cause := errors.New("upstream overloaded")
	mock := llm.NewMockProvider(llm.MockResponse{Err: cause})
	_, err := newTestGateway(mock, nil).Chat(context.Background(), "What is ATP?", "", nil)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "upstream overloaded", pe.Error())
	assert.ErrorIs(t, err, cause)
}

func TestGeneratePack_MissingMindMapIsValid(t *testing.T) {
	d := studypacktest.Photosynthesis()
	d.MindMap = &studypack.MindMap{MermaidCode: "  "}
	mock := llm.NewMockProvider(packResponse(d))

	got, err := newTestGateway(mock, nil).GeneratePack(context.Background(), studypacktest.Input())
	require.NoError(t, err)
	assert.Nil(t, got.MindMap)
}

func TestChat(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("Plants eat sunlight!")},
		llm.MockResponse{Content: json.RawMessage("  ")},
	)
	g := newTestGateway(mock, nil)

	history := []studypack.ChatMessage{{Role: studypack.ChatRoleModel, Text: "Hi"}}
	reply, err := g.Chat(context.Background(), "Explain like I'm 5", "Study Point: Leaves are green", history)
	require.NoError(t, err)
	assert.Equal(t, "Plants eat sunlight!", reply)

	req, _ := mock.LastCall()
	assert.Equal(t, chatSystemPrompt, req.System)
	assert.Nil(t, req.Schema)
	require.Len(t, req.Messages, 1, "history must not be replayed")
	assert.Equal(t, "Context for the doubt:\n\"Study Point: Leaves are green\"\n\nUser Question: Explain like I'm 5", req.Messages[0].Content)

	reply, err = g.Chat(context.Background(), "again", "", nil)
	require.NoError(t, err)
	assert.Equal(t, ChatFallbackReply, reply)
	req, _ = mock.LastCall()
	assert.Equal(t, "again", req.Messages[0].Content)
}

func TestChat_Errors(t *testing.T) {
	_, err := newTestGateway(nil, nil).Chat(context.Background(), "hi", "", nil)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	_, err = newTestGateway(mock, nil).Chat(context.Background(), "hi", "", nil)
	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestGenerateImage_ModelSelection(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	images := llm.NewMockProvider()
	images.AddImage(llm.MockImageResponse{Data: png, MIMEType: "image/png"})
	images.AddImage(llm.MockImageResponse{Data: png, MIMEType: "image/png"})
	g := newTestGateway(nil, images)

	uri, err := g.GenerateImage(context.Background(), "Educational illustration about Photosynthesis", studypack.ImageSize1K)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png), uri)

	_, err = g.GenerateImage(context.Background(), "leaf", studypack.ImageSize4K)
	require.NoError(t, err)

	require.Len(t, images.ImageCalls, 2)
	assert.Equal(t, llm.ImageRequest{Prompt: "Educational illustration about Photosynthesis", Model: "flash-image", AspectRatio: "1:1"}, images.ImageCalls[0])
	assert.Equal(t, llm.ImageRequest{Prompt: "leaf", Model: "pro-image", AspectRatio: "1:1", ImageSize: "4K"}, images.ImageCalls[1])
}

func TestGenerateImage_Errors(t *testing.T) {
	_, err := newTestGateway(nil, nil).GenerateImage(context.Background(), "leaf", studypack.ImageSize1K)
	assert.True(t, IsMissingCredentialForImages(err))

	images := llm.NewMockProvider()
	g := newTestGateway(nil, images)

	_, err = g.GenerateImage(context.Background(), " ", studypack.ImageSize1K)
	var ie *ImageGenerationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "empty prompt", ie.Reason)

	_, err = g.GenerateImage(context.Background(), "leaf", "8K")
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, images.ImageCallCount())

	images.AddImage(llm.MockImageResponse{})
	_, err = g.GenerateImage(context.Background(), "leaf", studypack.ImageSize1K)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "no image data found in response", ie.Reason)
	assert.False(t, IsMissingCredentialForImages(err))

	images.AddImage(llm.MockImageResponse{Err: errors.New("Error 404: Requested entity was not found.")})
	_, err = g.GenerateImage(context.Background(), "leaf", studypack.ImageSize2K)
	require.ErrorAs(t, err, &ie)
	assert.True(t, IsMissingCredentialForImages(err))
}

func TestParsePack_TargetsAreNotEnforced(t *testing.T) {
	d := studypacktest.Photosynthesis()
	d.Flashcards = d.Flashcards[:5]
	d.Quiz.Questions = d.Quiz.Questions[:3]

	got, err := ParsePack(studypacktest.JSON(d))
	require.NoError(t, err)
	assert.Len(t, got.Flashcards, 5)
	assert.Len(t, got.Quiz.Questions, 3)
}
