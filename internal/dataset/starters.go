package dataset

import (
	"fmt"
	"math/rand"
)

// starters are the opening lines a self-play conversation is seeded with,
// spoken by the virtual human evaluator.
var starters = map[string][]string{
	"<en>": {"hello, how are you doing today?", "hi, how are you?", "hello , what are you doing ?"},
	"<zh>": {"你好，今天在做什么？", "嗨，你好吗？", "你好，你今天怎么样 ？"},
	"<it>": {"Ciao, come va oggi?", "Ciao, come stai?", "Ciao, cosa stai facendo ?"},
	"<jp>": {"こんにちは、今日はどうですか？", "こんにちは、元気ですか？", "やあ、元気 ？"},
	"<ko>": {"안녕, 오늘 어떻게 지내니?", "안녕하세요?", "안녕, 너는 무엇을 하고 있니?"},
	"<id>": {"Hai apa kabarmu hari ini?", "Hai apa kabar?", "Halo apa yang kamu lakukan ?"},
	"<fr>": {"Bonjour comment allez-vous aujourd'hui?", "salut comment ca va?", "salut que fais tu ?"},
}

// Starter picks a random opening line for the language tag.
func Starter(rng *rand.Rand, tag string) (string, error) {
	lines, ok := starters[tag]
	if !ok {
		return "", fmt.Errorf("no starters for language %s", tag)
	}
	return lines[rng.Intn(len(lines))], nil
}
