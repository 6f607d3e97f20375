package chat_test

import (
	"github.com/opsforge/sage/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transcript", func() {
	var t chat.Transcript

	BeforeEach(func() {
		t = chat.NewTranscript("session-1")
	})

	Describe("Append", func() {
		It("should not mutate the original transcript", func() {
			appended := chat.Append(t, chat.NewUserMessage("hello"))
			Expect(t.Messages).To(BeEmpty())
			Expect(appended.Messages).To(HaveLen(1))
		})

		It("should trim user input", func() {
			appended := chat.Append(t, chat.NewUserMessage("  hello  "))
			Expect(appended.Messages[0].Content).To(Equal("hello"))
		})

		It("should give permanent messages unique non-reserved ids", func() {
			first := chat.NewUserMessage("one")
			second := chat.NewAssistantMessage("two")
			Expect(first.ID).ToNot(Equal(second.ID))
			Expect(first.ID).ToNot(Equal(chat.StreamingMessageID))
			Expect(second.ID).ToNot(Equal(chat.StreamingMessageID))
		})
	})

	Describe("SetStreaming", func() {
		It("should add a placeholder with the partial content", func() {
			updated := chat.SetStreaming(t, "Hel")
			content, ok := chat.PlaceholderContent(updated)
			Expect(ok).To(BeTrue())
			Expect(content).To(Equal("Hel"))
		})

		It("should keep at most one placeholder across repeated updates", func() {
			updated := chat.SetStreaming(t, "Hel")
			updated = chat.SetStreaming(updated, "Hello")
			updated = chat.SetStreaming(updated, "Hello world")

			count := 0
			for _, msg := range updated.Messages {
				if msg.IsPlaceholder() {
					count++
				}
			}
			Expect(count).To(Equal(1))

			content, _ := chat.PlaceholderContent(updated)
			Expect(content).To(Equal("Hello world"))
		})

		It("should preserve the relative order of permanent messages", func() {
			updated := chat.Append(t, chat.NewUserMessage("first"))
			updated = chat.Append(updated, chat.NewAssistantMessage("second"))
			updated = chat.SetStreaming(updated, "partial")
			updated = chat.Append(updated, chat.NewUserMessage("third"))
			updated = chat.SetStreaming(updated, "more partial")

			var permanent []string
			for _, msg := range updated.Messages {
				if !msg.IsPlaceholder() {
					permanent = append(permanent, msg.Content)
				}
			}
			Expect(permanent).To(Equal([]string{"first", "second", "third"}))
		})
	})

	Describe("FinalizeStreaming", func() {
		It("should replace the placeholder with a permanent assistant message", func() {
			updated := chat.Append(t, chat.NewUserMessage("hi"))
			updated = chat.SetStreaming(updated, "Hello wor")
			updated = chat.FinalizeStreaming(updated, "Hello world")

			Expect(chat.HasPlaceholder(updated)).To(BeFalse())

			last, ok := chat.GetLastMessage(updated)
			Expect(ok).To(BeTrue())
			Expect(last.Role).To(Equal(chat.RoleAssistant))
			Expect(last.Content).To(Equal("Hello world"))
			Expect(last.ID).ToNot(Equal(chat.StreamingMessageID))
		})
	})

	Describe("ClearStreaming", func() {
		It("should be a no-op when no placeholder exists", func() {
			updated := chat.Append(t, chat.NewUserMessage("hi"))
			cleared := chat.ClearStreaming(updated)
			Expect(cleared.Messages).To(HaveLen(1))
		})
	})

	Describe("GetMessagesByRole", func() {
		It("should select only the requested role", func() {
			updated := chat.Append(t, chat.NewUserMessage("q1"))
			updated = chat.Append(updated, chat.NewAssistantMessage("a1"))
			updated = chat.Append(updated, chat.NewUserMessage("q2"))

			users := chat.GetMessagesByRole(updated, chat.RoleUser)
			Expect(users).To(HaveLen(2))
			Expect(users[0].Content).To(Equal("q1"))
			Expect(users[1].Content).To(Equal("q2"))
		})

		It("should include the placeholder under the assistant role", func() {
			updated := chat.SetStreaming(t, "partial")
			Expect(chat.GetMessagesByRole(updated, chat.RoleAssistant)).To(HaveLen(1))
		})
	})

	Describe("PermanentMessagesByRole", func() {
		It("should exclude the placeholder", func() {
			updated := chat.Append(t, chat.NewAssistantMessage("done"))
			updated = chat.SetStreaming(updated, "partial")

			permanent := chat.PermanentMessagesByRole(updated, chat.RoleAssistant)
			Expect(permanent).To(HaveLen(1))
			Expect(permanent[0].Content).To(Equal("done"))
		})

		It("should be empty when only the placeholder exists", func() {
			updated := chat.SetStreaming(t, "partial")
			Expect(chat.PermanentMessagesByRole(updated, chat.RoleAssistant)).To(BeEmpty())
		})
	})

	Describe("IsEmpty", func() {
		It("should report an empty transcript", func() {
			Expect(chat.IsEmpty(t)).To(BeTrue())
			Expect(chat.IsEmpty(chat.Append(t, chat.NewUserMessage("x")))).To(BeFalse())
		})
	})
})
