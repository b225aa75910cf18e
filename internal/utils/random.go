package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
	"github.com/timetrak/client/internal/form"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var departmentNames = []string{
	"Front Desk", "Kitchen", "Warehouse", "Customer Support", "Maintenance",
	"Housekeeping", "Delivery", "Security", "Retail Floor", "Events",
}

var jobTitles = []string{
	"Associate", "Shift Lead", "Supervisor", "Coordinator", "Specialist", "Trainee",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// SuggestUsername 把姓名转换为拼音作为用户名建议，非中文字符保留字母和数字
func SuggestUsername(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '-' || r == '.':
			if b.Len() > 0 {
				b.WriteByte('.')
			}
		default:
			for _, p := range pinyin.LazyConvert(string(r), nil) {
				b.WriteString(p)
			}
		}
	}
	return strings.Trim(b.String(), ".")
}

// GenerateUsernameFromChineseName 取每个字拼音的随机前缀并追加 1~3 位数字，避免重名
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}
	// 用户名至少 3 个字符
	for len(username) < 3 {
		username += string(digits[rand.Intn(len(digits))])
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

func GenerateRandomPhone() string {
	return fmt.Sprintf("+1 555-%03d-%04d", rand.Intn(1000), rand.Intn(10000))
}

// GenerateRandomEmployee 生成员工注册表单，由调用方通过 form 校验后提交
func GenerateRandomEmployee(departmentID int64, emailDomainName string) form.EmployeeRegistrationForm {
	name := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(name)
	return form.EmployeeRegistrationForm{
		Name:         name,
		Username:     username,
		Email:        username + "@" + emailDomainName,
		Phone:        GenerateRandomPhone(),
		DepartmentID: departmentID,
		Role:         string(domain.RoleEmployee),
		Password:     GenerateRandomPassword(12),
	}
}

// GenerateRandomDepartments 返回 n 个不重复的部门，超过预置名称数量时追加编号
func GenerateRandomDepartments(n int) []form.DepartmentForm {
	names := append([]string{}, departmentNames...)
	rand.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	out := make([]form.DepartmentForm, n)
	for i := range out {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}
		out[i] = form.DepartmentForm{Name: name, Description: name + " team"}
	}
	return out
}

// GenerateRandomJob 时薪在 15.00 到 45.00 之间，保留两位小数
func GenerateRandomJob(departmentID int64, departmentName string) form.JobForm {
	cents := 1500 + rand.Intn(3001)
	return form.JobForm{
		Title:        departmentName + " " + jobTitles[rand.Intn(len(jobTitles))],
		HourlyWage:   decimal.New(int64(cents), -2),
		DepartmentID: departmentID,
	}
}
