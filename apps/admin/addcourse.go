package main

import (
	"context"
	"fmt"

	"github.com/trezcool/learnhub/core/course"
)

func (cli *commandLine) addCourse(title, description string, price float64) error {
	nc := course.NewCourse{
		Title:       title,
		Description: description,
		Price:       price,
	}
	if err := nc.Validate(cli.validate); err != nil {
		return err
	}

	c, err := cli.courseSvc.Create(context.Background(), nc)
	if err != nil {
		return err
	}
	fmt.Printf("course %s %q added ($%.2f)\n", c.ID, c.Title, c.Price)
	return nil
}
