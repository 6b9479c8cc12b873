package universe

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates relative to the viewport origin
}

//DefaultTemplates are available in every new universe
var DefaultTemplates = []Template{
	{"blinker", "period 2 oscillator", [][]int{{1, 0}, {1, 1}, {1, 2}}},
	{"block", "still life", [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
	{"glider", "the smallest spaceship", [][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}},
	{"sample", "the test sample with 3 stable patterns", [][]int{
		{1, 1}, {1, 2},
		{2, 1}, {2, 2},
		{3, 3},
		{4, 2},
		{4, 3},
		{5, 3},
	}},
}
