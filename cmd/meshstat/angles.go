package main

import "github.com/golang/geo/s1"

func deg(r float64) float64 { return s1.Angle(r).Degrees() }

func rad(d float64) float64 { return (s1.Angle(d) * s1.Degree).Radians() }
