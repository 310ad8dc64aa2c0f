package application

var DefaultJokes = []string{
	"Why did the programmer quit? Because he didn't get arrays.",
	"Why do programmers prefer dark mode? Light attracts bugs.",
}
