package game

import (
	"math/rand"
)

// Choice 是猜拳游戏中的一手。取值与按钮回调数据一致，直接用俄文词。
type Choice string

const (
	Rock     Choice = "камень"
	Scissors Choice = "ножницы"
	Paper    Choice = "бумага"
)

// choices 的顺序固定，RandomChoice 依赖它做均匀抽取。
var choices = []Choice{Rock, Scissors, Paper}

// beats 记录每一手能赢的对手。
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// ParseChoice 把回调数据解析成一手，未知输入返回false。
func ParseChoice(s string) (Choice, bool) {
	c := Choice(s)
	if _, ok := beats[c]; !ok {
		return "", false
	}
	return c, true
}

// RandomChoice 返回机器人随机出的一手。
func RandomChoice() Choice {
	return choices[rand.Intn(len(choices))]
}

// Outcome 是一局的结果，从用户视角描述。
type Outcome int

const (
	Draw Outcome = iota
	UserWins
	UserLoses
)

// Resolve 按照 石头>剪刀>布>石头 的规则判定一局。
func Resolve(userChoice, botChoice Choice) Outcome {
	if userChoice == botChoice {
		return Draw
	}
	if beats[userChoice] == botChoice {
		return UserWins
	}
	return UserLoses
}
