package chat

// systemPrompt frames every assistant call in a session.
const systemPrompt = `You are "Haven", an empathetic AI listener for teens.
You listen first. You validate feelings without judging, never diagnose,
never give medical advice, and never pretend to be human. Keep replies
short, warm and concrete. If the user mentions self-harm or being in
danger, gently encourage them to talk to a trusted adult or a local
crisis line right away.`

// greetingTask turns intake check-in answers into the request for a
// session's opening message.
const greetingTask = `A user just completed a short check-in quiz before starting this conversation.
Write a brief, warm opening message that acknowledges how they seem to be doing, without quoting their answers back verbatim. Their answers:
`

// fallbackGreeting opens the session when the assistant is unreachable.
// Onboarding never hard-fails on an assistant outage.
const fallbackGreeting = "Hi there. I'm here to listen. Feel free to share whatever is on your mind."
