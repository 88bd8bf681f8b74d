package onboarding

import "fmt"

const welcomeBanner = `
╔════════════════════════════════════════════════════════════════╗
║                    Welcome to Arogya Setup                     ║
╚════════════════════════════════════════════════════════════════╝

This wizard writes arogya.yaml with:
  • where your local plans and reminder history are stored
  • which backend serves vaccinations, doctors and appointments
  • when the daily vaccine digest goes out
  • optional Telegram and Discord delivery

Press Enter to accept a [default].
`

const completionMessage = `
✓ Setup complete

Config: %s
Next steps:
  arogya login              sign in to the backend
  arogya plans add --help   add a medicine reminder
  arogya remind             run the reminder daemon
`

func stepHeader(n int, title string) string {
	const bar = "════════════════════════════════════════════════════════════════"
	return fmt.Sprintf("\n╔%s╗\n║  %-62s║\n╚%s╝\n", bar, fmt.Sprintf("Step %d: %s", n, title), bar)
}
