package dialog

import (
	"fmt"
	"time"

	"github.com/ashureev/dogtrainer/internal/alexa"
	"github.com/ashureev/dogtrainer/internal/domain"
)

// Spoken prompts. %s is always the dog's name.
const (
	speechWelcome = "This is your dog trainer. " +
		"Ask me to start the training, or ask for more info."
	speechHelp = "I can make your dog do tricks, but I need your help the first few times. " +
		"Go get some treats for the dog, and ask me to start training."
	speechGoodbye = "Dog trainer out, have a nice day!"

	speechNameSet    = "I'll remember that your dog is called %s. Hi, %s!"
	speechAskSex     = "Is %s a boy or a girl?"
	speechSexSet     = "Got it, %s is a %s. Should I start training now?"
	speechSexUnclear = "Sorry, I didn't catch that. Is %s a boy or a girl?"

	repromptShouldStart = "Can I start the training?"
	repromptStartNow    = "Do you want to start training now?"
	repromptReadyToGo   = "Are you ready to start the training?"
	repromptTrainAgain  = "Do you want me to train your dog again?"
	repromptAskSex      = "Is your dog a boy or a girl?"

	cardBodyWelcome  = "Ask me to start the training, or ask for more info."
	cardBodyTraining = "We trained: Come, Sit, Down!"
)

func confirmationSpeech(name string) string {
	return alexa.NewSSML().
		Text("Lets get started.").
		Text(fmt.Sprintf("Take your treats, motivate %s to listen to me, by giving him a treat when he follows the commands.", name)).
		Text("Ready to start?").
		String()
}

func confirmationCard(name string) string {
	return fmt.Sprintf("Let's get started. Take your treats, and give %s one everytime a command is executed correctly.", name)
}

// trainingScript renders the scripted session: come, sit, down, with pauses
// for the dog to react and emphasized praise between commands.
func trainingScript(name string, sex domain.Sex) string {
	praise := sex.Praise()
	return alexa.NewSSML().
		Text(name + ", come here!").
		Break(2 * time.Second).
		Emphasis("Good " + praise + "!").
		Break(time.Second).
		Text(name + ", sit!").
		Break(1500 * time.Millisecond).
		Text("Good " + praise + "!").
		Break(time.Second).
		Text(name + ", down!").
		Break(1500 * time.Millisecond).
		Emphasis("Good dog!").
		Break(200 * time.Millisecond).
		Emphasis("Good " + praise + ".").
		Break(300 * time.Millisecond).
		Text("That concludes the training session. Should we train again?").
		String()
}

func farewellCard(name string) string {
	who := "you"
	if name != "" {
		who = name
	}
	return fmt.Sprintf("Thanks for using Dog Trainer, I hope %s had fun!", who)
}
